package bundler

import (
	"fmt"
	"slices"
)

// DefaultStage is the stage built when the configuration names none.
const DefaultStage = "main"

// Config is the project configuration.
type Config struct {
	Stages map[string]Stage `yaml:"stages" json:"stages"`

	// ExtraDatumTypes lists, per spending validator, additional datum types
	// outputs at its address may carry.
	ExtraDatumTypes map[string][]DatumType `yaml:"extraDatumTypes,omitempty" json:"extraDatumTypes,omitempty"`
}

// Stage selects the scripts included in one build output.
type Stage struct {
	Include []string `yaml:"include,omitempty" json:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// DatumType names a type exported by a module file.
type DatumType struct {
	File     string `yaml:"file" json:"file"`
	TypeName string `yaml:"typeName" json:"typeName"`
}

// DefaultConfig returns a configuration with a single unfiltered stage.
func DefaultConfig() Config {
	return Config{Stages: map[string]Stage{DefaultStage: {}}}
}

// Includes reports whether the stage builds the script called name.
func (s Stage) Includes(name string) bool {
	if len(s.Include) > 0 && !slices.Contains(s.Include, name) {
		return false
	}
	return !slices.Contains(s.Exclude, name)
}

// Stage looks up a stage by name.
func (c Config) Stage(name string) (Stage, error) {
	s, ok := c.Stages[name]
	if !ok {
		return Stage{}, fmt.Errorf("%w: %s", ErrUnknownStage, name)
	}
	return s, nil
}

// StageNames returns the configured stage names, sorted.
func (c Config) StageNames() []string {
	names := make([]string, 0, len(c.Stages))
	for n := range c.Stages {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
