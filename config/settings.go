package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	bundler "github.com/branched-services/go-bundler"
)

// EnvPrefix prefixes the environment variables that override settings, as
// in HLBUNDLE_LOCK_FILE.
const EnvPrefix = "HLBUNDLE"

// Setting keys. Each is both a flag name and, upper-cased with dashes turned
// into underscores, an environment variable suffix.
const (
	DirKey      = "dir"
	ConfigKey   = "config"
	LockFileKey = "lock-file"
	OutKey      = "out"
	StageKey    = "stage"
)

// Settings are the resolved options of one command line invocation.
type Settings struct {
	// Dir is the project root scripts are discovered under.
	Dir string
	// ConfigFile names the project config. Empty means look up DefaultFiles
	// in Dir.
	ConfigFile string
	// LockFile defaults to bundler.DefaultLockFile in Dir.
	LockFile string
	// OutDir receives one bundle.json per stage. Empty prints to stdout.
	OutDir string
	// Stage restricts a build to one stage. Empty builds every stage.
	Stage string
}

// AddFlags registers the setting flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(DirKey, ".", "Project root to discover scripts under")
	fs.String(ConfigKey, "", "Project config file (default: helios.yaml, helios.yml or helios.json in the project root)")
	fs.String(LockFileKey, "", "Lock file (default: "+bundler.DefaultLockFile+" in the project root)")
	fs.String(OutKey, "", "Directory to write bundles to")
	fs.String(StageKey, "", "Build only this stage")
}

// Load resolves settings from flags, the environment and env files. Flags
// set on the command line win over the environment, which wins over flag
// defaults. With no envFiles, a .env in the working directory is loaded if
// it exists. Env files never override variables already set.
func Load(fs *pflag.FlagSet, envFiles ...string) (Settings, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Settings{}, fmt.Errorf("config: binding flags: %w", err)
	}

	s := Settings{
		Dir:        v.GetString(DirKey),
		ConfigFile: v.GetString(ConfigKey),
		LockFile:   v.GetString(LockFileKey),
		OutDir:     v.GetString(OutKey),
		Stage:      v.GetString(StageKey),
	}
	if s.Dir == "" {
		s.Dir = "."
	}
	return s, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: loading .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("config: loading env files: %w", err)
	}
	return nil
}

// LockPath returns the lock file location.
func (s Settings) LockPath() string {
	if s.LockFile != "" {
		return s.LockFile
	}
	return filepath.Join(s.Dir, bundler.DefaultLockFile)
}

// ProjectConfig loads the configured project config file, or looks one up
// in Dir.
func (s Settings) ProjectConfig() (bundler.Config, error) {
	if s.ConfigFile != "" {
		return LoadFile(s.ConfigFile)
	}
	cfg, _, err := Find(s.Dir)
	return cfg, err
}

// Stages returns the stages to build: Stage alone when set, otherwise every
// stage of cfg.
func (s Settings) Stages(cfg bundler.Config) ([]string, error) {
	if s.Stage == "" {
		return cfg.StageNames(), nil
	}
	if _, err := cfg.Stage(s.Stage); err != nil {
		return nil, err
	}
	return []string{s.Stage}, nil
}
