package command

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/branched-services/go-bundler/cmd/hlbundle/internal/view"
)

func NewDagCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "dag [dir]",
		Short: "Print the validator dependency graph",
		Long: Highlight("hlbundle dag") + "\n\n" +
			"Print, for every validator, the validators whose hash it embeds.\n" +
			"The human format lists validators in build order; -o dot renders\n" +
			"the graph for Graphviz.\n",
		Args: MaxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cli.settings(cmd, args)
			if err != nil {
				return err
			}
			b, _, err := cli.openBundle(cmd.Context(), s)
			if err != nil {
				return err
			}
			dag, err := b.GenerateDag()
			if err != nil {
				return err
			}

			switch cli.Format {
			case view.FormatDOT:
				return dag.WriteDOT(cli.Writer)
			case view.FormatJSON, view.FormatYAML:
				return cli.Encode(cli.Format, dag)
			}

			order, err := dag.TopologicalOrder()
			if err != nil {
				return err
			}
			for _, name := range order {
				if deps := dag[name]; len(deps) > 0 {
					cli.Printf("%s <- %s\n", name, strings.Join(deps, ", "))
				} else {
					cli.Println(name)
				}
			}
			return nil
		},
	}
}
