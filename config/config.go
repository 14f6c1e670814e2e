// Package config loads the project configuration file and the settings of
// the command line tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	bundler "github.com/branched-services/go-bundler"
)

// DefaultFiles are the project config files looked up, in order, when none
// is named explicitly.
var DefaultFiles = []string{"helios.yaml", "helios.yml", "helios.json"}

// ErrInvalidConfig is returned for a config file that parses but is not
// usable.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// LoadFile reads the project configuration at path. JSON documents are valid
// YAML, so one decoder handles both. An empty file is the default
// configuration.
func LoadFile(path string) (bundler.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return bundler.Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return bundler.Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(b []byte) (bundler.Config, error) {
	var cfg bundler.Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return bundler.Config{}, err
	}
	if len(cfg.Stages) == 0 {
		cfg.Stages = bundler.DefaultConfig().Stages
	}
	if err := validate(cfg); err != nil {
		return bundler.Config{}, err
	}
	return cfg, nil
}

func validate(cfg bundler.Config) error {
	for name := range cfg.Stages {
		if name == "" {
			return fmt.Errorf("%w: empty stage name", ErrInvalidConfig)
		}
	}
	for validator, types := range cfg.ExtraDatumTypes {
		for i, dt := range types {
			if dt.File == "" || dt.TypeName == "" {
				return fmt.Errorf("%w: extraDatumTypes.%s[%d] needs file and typeName", ErrInvalidConfig, validator, i)
			}
		}
	}
	return nil
}

// Find loads the first of DefaultFiles present in dir. It returns the
// default configuration and an empty path when there is none.
func Find(dir string) (bundler.Config, string, error) {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		_, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return bundler.Config{}, "", fmt.Errorf("config: %w", err)
		}
		cfg, err := LoadFile(p)
		return cfg, p, err
	}
	return bundler.DefaultConfig(), "", nil
}
