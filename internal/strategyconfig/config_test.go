package strategyconfig

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := "../../config/strategy/valuation_v1.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Meta.StrategyID != "valuation_v1" {
		t.Errorf("expected strategy_id=valuation_v1, got %s", cfg.Meta.StrategyID)
	}
	if cfg.Data.LookbackDays != 252 {
		t.Errorf("expected lookback_days=252, got %d", cfg.Data.LookbackDays)
	}
	if cfg.Scoring.Sensitivity != 0.15 {
		t.Errorf("expected sensitivity=0.15, got %v", cfg.Scoring.Sensitivity)
	}

	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	t.Logf("config hash: %s", hash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	yaml := `
meta:
  strategy_id: test
  version: "1.0"
  no_such_field: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(path); err == nil {
		t.Error("unknown field should fail the load")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Default() must validate: %v", err)
	}
}

func TestValidateWeightsSum(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Weights.Fundamental = 0.2 // sum = 1.1
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected weight-sum error")
	}
	vErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Field != "scoring.weights" {
		t.Errorf("field = %s, want scoring.weights", vErr.Field)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }},
		{"short lookback", func(c *Config) { c.Data.LookbackDays = 10 }},
		{"negative weight", func(c *Config) {
			c.Scoring.Weights.Momentum = -0.1
			c.Scoring.Weights.Statistical = 0.6
		}},
		{"zero sensitivity", func(c *Config) { c.Scoring.Sensitivity = 0 }},
		{"inverted rsi thresholds", func(c *Config) {
			c.Confirmation.RSIOversold = 80
			c.Confirmation.RSIOverbought = 20
		}},
		{"stop loss out of range", func(c *Config) { c.Backtest.StopLossPct = 1.5 }},
		{"bad entry confidence", func(c *Config) { c.Backtest.MinEntryConfidence = "LOW" }},
		{"inverted size range", func(c *Config) { c.Backtest.Sizing.High = SizeRange{Min: 0.7, Max: 0.5} }},
		{"overlapping tiers", func(c *Config) { c.Backtest.Sizing.Medium = SizeRange{Min: 0.2, Max: 0.9} }},
		{"negative patience", func(c *Config) { c.Backtest.NeutralPatience = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSizeRangeMidpoint(t *testing.T) {
	r := SizeRange{Min: 0.5, Max: 0.7}
	if got := r.Midpoint(); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("midpoint = %v, want 0.6", got)
	}
}
