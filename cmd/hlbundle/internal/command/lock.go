package command

import (
	"slices"

	"github.com/spf13/cobra"

	bundler "github.com/branched-services/go-bundler"
	"github.com/branched-services/go-bundler/cmd/hlbundle/internal/view"
)

func NewLockCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "lock [dir]",
		Short: "Build every stage and write the lock file",
		Long: Highlight("hlbundle lock") + "\n\n" +
			"Compile the validators of every stage and record their hashes in\n" +
			"the lock file. Hashes already locked must not change.\n",
		Args: MaxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cli.settings(cmd, args)
			if err != nil {
				return err
			}
			b, cfg, err := cli.openBundle(cmd.Context(), s)
			if err != nil {
				return err
			}
			stages, err := s.Stages(cfg)
			if err != nil {
				return err
			}
			for _, stage := range stages {
				if _, err := b.Build(stage, bundler.WithUnsimplified(false), bundler.WithDatumChecks(false)); err != nil {
					return err
				}
			}
			if err := b.WriteLock(); err != nil {
				return err
			}

			lock := b.Lock()
			if cli.Format == view.FormatJSON || cli.Format == view.FormatYAML {
				return cli.Encode(cli.Format, lock)
			}
			names := make([]string, 0, len(lock))
			for n := range lock {
				names = append(names, n)
			}
			slices.Sort(names)
			for _, n := range names {
				cli.Printf("%-24s %s\n", n, lock[n])
			}
			return nil
		},
	}
}
