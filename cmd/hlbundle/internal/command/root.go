package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/branched-services/go-bundler/cmd/hlbundle/internal/view"
	"github.com/branched-services/go-bundler/cmd/hlbundle/version"
	"github.com/branched-services/go-bundler/config"
)

// LogEnv selects the log level: debug, info, warn, error or silent.
const LogEnv = "HLBUNDLE_LOG"

type rootOptions struct {
	output string
	debug  bool
}

// NewRootCommand creates the root command with every subcommand attached.
// Flags are applied to cli before any subcommand runs.
func NewRootCommand(cli *CLI) *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use: "hlbundle",
		Short: color.RGB(50, 108, 229).Sprintf("hlbundle [global options] <subcommand> [args]") + "\n" +
			"Bundle on-chain scripts into deployable artifacts",
		Long: color.RGB(50, 108, 229).Sprintf("Usage: hlbundle [global options] <subcommand> [args]\n\n") +
			"hlbundle discovers the scripts of a project, resolves their imports and\n" +
			"cross references, compiles every validator in dependency order and pins\n" +
			"the resulting hashes in a lock file.\n",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 0 {
				_ = cmd.Help()
			}
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, err := view.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			level := view.ParseLogLevel(os.Getenv(LogEnv), view.LogLevelInfo)
			if opts.debug {
				level = view.LogLevelDebug
			}
			cli.Format = format
			cli.Logger = view.NewLogger(format, cli.Logs, level)
			return nil
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Output format. One of: (human | json | yaml | dot)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Set log level to debug")
	config.AddFlags(cmd.PersistentFlags())

	setUsageTemplate(cmd)
	cmd.SetVersionTemplate("{{.Version}}\n")

	AddCommands(cmd, cli)
	return cmd
}

func setUsageTemplate(cmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleHeading", color.RGB(50, 108, 229).SprintFunc())
	usageTemplate := strings.NewReplacer(
		`Usage:`, `{{StyleHeading "Usage:"}}`,
		`Examples:`, `{{StyleHeading "Examples:"}}`,
		`Available Commands:`, `{{StyleHeading "Available Commands:"}}`,
		`Additional Commands:`, `{{StyleHeading "Additional Commands:"}}`,
		`Flags:`, `{{StyleHeading "Options:"}}`,
		`Global Flags:`, `{{StyleHeading "Global Options:"}}`,
	).Replace(cmd.UsageTemplate())
	cmd.SetUsageTemplate(usageTemplate)
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewVersionCommand(cli),
		NewBundleCommand(cli),
		NewDagCommand(cli),
		NewLockCommand(cli),
	)
}

// Execute runs the CLI against the process arguments and exits.
func Execute() {
	// Disable color output if NO_COLOR is set in the environment
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	cli := NewCLI(os.Stdout, os.Stderr)
	if err := NewRootCommand(cli).Execute(); err != nil {
		if msg := err.Error(); msg != "" {
			fmt.Fprintln(cli.Logs, "Error:", msg)
		}
		os.Exit(1)
	}
	os.Exit(0)
}
