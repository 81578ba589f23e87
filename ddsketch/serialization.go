package ddsketch

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var magicBytes = [4]byte{'D', 'D', 'S', 'K'}

const serializationVersion = uint8(1)

const (
	flagHasNegativeStore = 1 << 0
)

var mappingKindCode = map[MappingKind]uint8{
	MappingLogarithmic: 0,
	MappingLinear:      1,
	MappingCubic:       2,
}

var mappingKindByCode = map[uint8]MappingKind{
	0: MappingLogarithmic,
	1: MappingLinear,
	2: MappingCubic,
}

// Bytes serializes the sketch to the wire format described by magic
// bytes "DDSK": a header (magic, version, flags, mapping kind,
// relative accuracy), the zero/count/sum/min/max statistics, and one
// length-prefixed bucket block per store.
func (d *DDSketch) Bytes() ([]byte, error) {
	code, ok := mappingKindCode[d.config.MappingKind]
	if !ok {
		return nil, fmt.Errorf("cannot serialize unknown mapping kind %q", d.config.MappingKind)
	}

	var flags uint8
	if d.negativeStore != nil {
		flags |= flagHasNegativeStore
	}

	buf := new(bytes.Buffer)
	buf.Write(magicBytes[:])
	buf.WriteByte(serializationVersion)
	buf.WriteByte(flags)
	buf.WriteByte(code)

	binary.Write(buf, binary.LittleEndian, d.config.RelativeAccuracy)
	binary.Write(buf, binary.LittleEndian, d.zeroCount)
	binary.Write(buf, binary.LittleEndian, d.count)
	binary.Write(buf, binary.LittleEndian, d.sum)
	binary.Write(buf, binary.LittleEndian, d.min)
	binary.Write(buf, binary.LittleEndian, d.max)

	writeBucketBlock(buf, d.positiveStore)
	if d.negativeStore != nil {
		writeBucketBlock(buf, d.negativeStore)
	}

	return buf.Bytes(), nil
}

func writeBucketBlock(buf *bytes.Buffer, s ddSketchStore) {
	count := uint32(s.BucketCount())
	binary.Write(buf, binary.LittleEndian, count)
	s.ForEach(func(index int, bucketCount uint64) {
		binary.Write(buf, binary.LittleEndian, int32(index))
		binary.Write(buf, binary.LittleEndian, bucketCount)
	})
}

// ddSketchStore is the subset of store.Store serialization needs.
type ddSketchStore interface {
	BucketCount() int
	ForEach(fn func(index int, count uint64))
}

// FromBytes parses the wire format written by Bytes into a fresh
// DDSketch. The mapping kind, relative accuracy and negative-value
// tracking come from the header in data, overriding those fields of
// cfg; the storage kind, bucket strategy and max buckets come from
// cfg. The statistics and bucket contents come from data.
func FromBytes(data []byte, cfg Config) (*DDSketch, error) {
	if len(data) < 4+1+1+1+8+8+8+8+8+8 {
		return nil, fmt.Errorf("ddsketch: data too short for header")
	}

	buf := bytes.NewBuffer(data)

	var magic [4]byte
	buf.Read(magic[:])
	if magic != magicBytes {
		return nil, fmt.Errorf("ddsketch: invalid magic bytes, expected DDSK")
	}

	version, _ := buf.ReadByte()
	if version != serializationVersion {
		return nil, fmt.Errorf("ddsketch: unsupported serialization version %d", version)
	}

	flags, _ := buf.ReadByte()
	hasNegativeStore := flags&flagHasNegativeStore != 0

	mappingCode, _ := buf.ReadByte()
	kind, ok := mappingKindByCode[mappingCode]
	if !ok {
		return nil, fmt.Errorf("ddsketch: unknown mapping kind code %d", mappingCode)
	}

	var relativeAccuracy float64
	binary.Read(buf, binary.LittleEndian, &relativeAccuracy)

	cfg.MappingKind = kind
	cfg.RelativeAccuracy = relativeAccuracy
	cfg.ContinuesNegative = hasNegativeStore

	sketch, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("ddsketch: reconstructing config from header: %w", err)
	}

	binary.Read(buf, binary.LittleEndian, &sketch.zeroCount)
	binary.Read(buf, binary.LittleEndian, &sketch.count)
	binary.Read(buf, binary.LittleEndian, &sketch.sum)
	binary.Read(buf, binary.LittleEndian, &sketch.min)
	binary.Read(buf, binary.LittleEndian, &sketch.max)

	if err := readBucketBlock(buf, sketch.positiveStore); err != nil {
		return nil, fmt.Errorf("ddsketch: reading positive buckets: %w", err)
	}
	if hasNegativeStore {
		if err := readBucketBlock(buf, sketch.negativeStore); err != nil {
			return nil, fmt.Errorf("ddsketch: reading negative buckets: %w", err)
		}
	}

	return sketch, nil
}

func readBucketBlock(buf *bytes.Buffer, s interface{ Add(index int, count uint64) }) error {
	var numBuckets uint32
	if err := binary.Read(buf, binary.LittleEndian, &numBuckets); err != nil {
		return err
	}
	for i := uint32(0); i < numBuckets; i++ {
		var index int32
		var count uint64
		if err := binary.Read(buf, binary.LittleEndian, &index); err != nil {
			return err
		}
		if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
			return err
		}
		s.Add(int(index), count)
	}
	return nil
}
