package command

import (
	"github.com/spf13/cobra"

	"github.com/branched-services/go-bundler/cmd/hlbundle/version"
)

func NewVersionCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: Highlight("hlbundle version") + "\n\n" +
			"Display the current version of hlbundle.\n",
		Args: ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			version.Fprint(cli.Writer)
		},
	}
}
