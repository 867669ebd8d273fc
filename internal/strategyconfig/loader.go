package strategyconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the strategy YAML and returns the validated Config with the
// raw bytes. KnownFields(true) makes a typo or stale field fail loudly
// instead of silently falling back to a default.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, data, err
	}

	return &cfg, data, nil
}

// Hash generates a SHA-256 hash of the Config via canonical JSON. Structs,
// not maps, keep the field order and therefore the hash reproducible.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Default returns the built-in valuation_v1 parameters, used when no
// strategy file is supplied on the command line.
func Default() *Config {
	return &Config{
		Meta: Meta{StrategyID: "valuation_v1", Version: "1.0"},
		Data: Data{LookbackDays: 252},
		Scoring: Scoring{
			Weights: Weights{
				Statistical: 0.4,
				Relative:    0.4,
				Momentum:    0.1,
				Fundamental: 0.1,
			},
			Sensitivity:        0.15,
			ZScoreClip:         3.0,
			ROCCapPct:          20,
			EMADeviationCapPct: 20,
		},
		Confirmation: Confirmation{
			RSIOverbought:  70,
			RSIOversold:    30,
			ZScoreAbs:      2.0,
			PercentileBand: 40,
		},
		Backtest: Backtest{
			StopLossPct:        0.15,
			TakeProfitPct:      0.05,
			ATRTrailMultiple:   2.0,
			NeutralPatience:    3,
			MinEntryConfidence: "HIGH",
			RiskFreeRate:       0.03,
			Sizing: Sizing{
				Medium:   SizeRange{Min: 0.2, Max: 0.4},
				High:     SizeRange{Min: 0.5, Max: 0.7},
				VeryHigh: SizeRange{Min: 0.8, Max: 1.0},
			},
		},
	}
}
