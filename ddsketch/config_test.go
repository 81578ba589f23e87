package ddsketch

import (
	"errors"
	"testing"

	"github.com/quantileflow/sketches/sketchcore"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate cleanly: %v", err)
	}
}

func TestConfigValidateRejectsOutOfRangeAccuracy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RelativeAccuracy = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero relative accuracy")
	}
	cfg.RelativeAccuracy = 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for relative accuracy of 1")
	}
}

func TestConfigValidateRejectsDenseWithNonFixedStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageKind = StorageDense
	cfg.BucketStrategy = StrategyDynamic
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for dense storage paired with a non-fixed strategy")
	}
	if !errors.Is(err, sketchcore.ErrIncompatibleStorage) {
		t.Errorf("Validate() error = %v, want errors.Is(err, sketchcore.ErrIncompatibleStorage)", err)
	}
	cfg.BucketStrategy = StrategyFixed
	cfg.MaxBuckets = 128
	if err := cfg.Validate(); err != nil {
		t.Errorf("dense storage with fixed strategy should validate: %v", err)
	}
}

func TestConfigValidateRequiresMaxBucketsUnderFixed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BucketStrategy = StrategyFixed
	cfg.MaxBuckets = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for fixed strategy with max_buckets=0")
	}
}
