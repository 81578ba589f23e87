package sketchcore

import "github.com/sirupsen/logrus"

// Logger is the destination for soft-anomaly warnings emitted by every
// sketch family: deleting an absent value, reading an out-of-range
// bucket, constructing UNLIMITED storage with an explicit max_buckets,
// and MomentSketch solver non-convergence. Callers that want sketch
// warnings folded into their own log pipeline can replace it; it
// defaults to logrus' standard logger so a library user who does
// nothing still sees the warnings on stderr.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Warn logs a soft anomaly with the given fields. Soft anomalies never
// return an error to the caller; this is the only trace they leave.
func Warn(msg string, fields logrus.Fields) {
	Logger.WithFields(fields).Warn(msg)
}
