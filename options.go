package bundler

import (
	"log/slog"

	"github.com/branched-services/go-bundler/compiler"
)

// BundleOption configures a Bundle.
type BundleOption func(*Bundle)

// BuildOption configures the Build() operation.
type BuildOption func(*buildConfig)

// buildConfig holds configuration for the Build method.
type buildConfig struct {
	dumpIR       map[string]bool
	unsimplified bool
	datumChecks  bool
}

// defaultBuildConfig returns the default build configuration.
func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		dumpIR:       make(map[string]bool),
		unsimplified: true,
		datumChecks:  true,
	}
}

// WithCompiler sets the compiler backend. Required.
func WithCompiler(c compiler.Compiler) BundleOption {
	return func(b *Bundle) {
		b.compiler = c
	}
}

// WithLockStore sets where the lock is loaded from and saved to.
// Default is a FileLockStore at DefaultLockFile.
func WithLockStore(s LockStore) BundleOption {
	return func(b *Bundle) {
		b.lockStore = s
	}
}

// WithLogger sets the logger. Default discards all output.
func WithLogger(l *slog.Logger) BundleOption {
	return func(b *Bundle) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithConfig sets the project configuration. Default is DefaultConfig().
func WithConfig(c Config) BundleOption {
	return func(b *Bundle) {
		b.config = c
	}
}

// WithDumpIR logs the final intermediate form of the named validators at
// debug level.
func WithDumpIR(names ...string) BuildOption {
	return func(c *buildConfig) {
		for _, n := range names {
			c.dumpIR[n] = true
		}
	}
}

// WithUnsimplified enables or disables the source-mapped second pass.
// Enabled by default.
func WithUnsimplified(enabled bool) BuildOption {
	return func(c *buildConfig) {
		c.unsimplified = enabled
	}
}

// WithDatumChecks enables or disables datum check compilation.
// Enabled by default.
func WithDatumChecks(enabled bool) BuildOption {
	return func(c *buildConfig) {
		c.datumChecks = enabled
	}
}
