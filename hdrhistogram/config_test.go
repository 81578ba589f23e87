package hdrhistogram

import "testing"

func TestConfigValidateDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on default config error = %v", err)
	}
}

func TestConfigValidateRejectsNonPositiveMin(t *testing.T) {
	cfg := Config{MinValue: 0, MaxValue: 100, NumBuckets: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject a non-positive min_value")
	}
}

func TestConfigValidateRejectsMaxBelowMin(t *testing.T) {
	cfg := Config{MinValue: 100, MaxValue: 50, NumBuckets: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject max_value <= min_value")
	}
}

func TestConfigValidateRejectsZeroBuckets(t *testing.T) {
	cfg := Config{MinValue: 1, MaxValue: 100, NumBuckets: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() should reject num_buckets < 1")
	}
}
