package bundler

import (
	"errors"
	"slices"
	"testing"
)

func TestStageIncludes(t *testing.T) {
	tests := []struct {
		name     string
		stage    Stage
		script   string
		expected bool
	}{
		{"empty stage includes everything", Stage{}, "vault", true},
		{"include list", Stage{Include: []string{"vault"}}, "vault", true},
		{"missing from include list", Stage{Include: []string{"vault"}}, "oracle", false},
		{"exclude list", Stage{Exclude: []string{"vault"}}, "vault", false},
		{"exclude wins over include", Stage{Include: []string{"vault"}, Exclude: []string{"vault"}}, "vault", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stage.Includes(tt.script); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestConfigStage(t *testing.T) {
	cfg := Config{Stages: map[string]Stage{"preprod": {}, "mainnet": {Exclude: []string{"faucet"}}}}

	if _, err := cfg.Stage("mainnet"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if _, err := cfg.Stage("main"); !errors.Is(err, ErrUnknownStage) {
		t.Errorf("Expected ErrUnknownStage, got %v", err)
	}
	if !slices.Equal(cfg.StageNames(), []string{"mainnet", "preprod"}) {
		t.Errorf("Unexpected stage names %v", cfg.StageNames())
	}
}
