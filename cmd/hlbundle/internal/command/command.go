package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	bundler "github.com/branched-services/go-bundler"
	"github.com/branched-services/go-bundler/cmd/hlbundle/internal/view"
	"github.com/branched-services/go-bundler/config"
)

// CLI is the state shared by every command. Results go to the embedded
// Stream, logs to Logs.
type CLI struct {
	*view.Stream
	Logs   io.Writer
	Logger *slog.Logger
	Format view.Format
}

// NewCLI creates a CLI printing results to out and logs to logs. Logging is
// off until the root command has parsed its flags.
func NewCLI(out, logs io.Writer) *CLI {
	return &CLI{
		Stream: view.NewStream(out),
		Logs:   logs,
		Logger: view.NewNopLogger(),
		Format: view.FormatHuman,
	}
}

// Highlight applies a blue color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

// settings resolves the settings of cmd. An optional positional argument
// overrides the project directory.
func (c *CLI) settings(cmd *cobra.Command, args []string) (config.Settings, error) {
	s, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Settings{}, err
	}
	if len(args) > 0 {
		s.Dir = args[0]
	}
	return s, nil
}

// openBundle discovers and resolves the project described by s.
func (c *CLI) openBundle(ctx context.Context, s config.Settings) (*bundler.Bundle, bundler.Config, error) {
	cfg, err := s.ProjectConfig()
	if err != nil {
		return nil, bundler.Config{}, err
	}
	b, err := bundler.New(ctx, os.DirFS(s.Dir),
		bundler.WithConfig(cfg),
		bundler.WithLockStore(bundler.NewFileLockStore(s.LockPath())),
		bundler.WithLogger(c.Logger),
	)
	if err != nil {
		return nil, bundler.Config{}, err
	}
	return b, cfg, nil
}

// ExactArgs returns an error if there is not the exact number of args.
func ExactArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == number {
			return nil
		}
		return fmt.Errorf("expected %d arguments, got %d", number, len(args))
	}
}

// MaxArgs returns an error if there are more than the max number of args.
func MaxArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) <= number {
			return nil
		}
		return fmt.Errorf("expected at most %d arguments, got %d", number, len(args))
	}
}
