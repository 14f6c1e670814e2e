package command

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	bundler "github.com/branched-services/go-bundler"
	"github.com/branched-services/go-bundler/cmd/hlbundle/internal/view"
)

// BundleFile is the name of the per-stage output file.
const BundleFile = "bundle.json"

// BundleOptions holds the options for the bundle command.
type BundleOptions struct {
	WriteLock   bool
	DumpIR      []string
	NoSourceMap bool
}

func NewBundleCommand(cli *CLI) *cobra.Command {
	var opts BundleOptions

	cmd := &cobra.Command{
		Use:   "bundle [dir]",
		Short: "Compile every stage of a project",
		Long: Highlight("hlbundle bundle") + "\n\n" +
			"Discover the scripts under dir (default: the current directory),\n" +
			"compile every validator and endpoint included in each stage, and\n" +
			"print the artifacts or write them to --out/<stage>/" + BundleFile + ".\n\n" +
			"A validator whose hash differs from the lock file fails the build.\n" +
			"New hashes are written to the lock file only with --write-lock.\n",
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

			buildOpts := []bundler.BuildOption{
				bundler.WithDumpIR(opts.DumpIR...),
				bundler.WithUnsimplified(!opts.NoSourceMap),
			}
			all := make([]*bundler.Artifacts, 0, len(stages))
			for _, stage := range stages {
				out, err := b.Build(stage, buildOpts...)
				if err != nil {
					return err
				}
				all = append(all, out)
			}

			if s.OutDir != "" {
				for _, out := range all {
					if err := writeBundle(s.OutDir, out); err != nil {
						return err
					}
				}
			}
			if opts.WriteLock {
				if err := b.WriteLock(); err != nil {
					return err
				}
			}
			if s.OutDir != "" {
				cli.Logger.Info("wrote bundles", "dir", s.OutDir, "stages", len(all))
				return nil
			}
			return cli.printArtifacts(all)
		},
	}

	cmd.Flags().BoolVar(&opts.WriteLock, "write-lock", false, "Record new validator hashes in the lock file")
	cmd.Flags().StringSliceVar(&opts.DumpIR, "dump-ir", nil, "Log the final IR of these validators at debug level")
	cmd.Flags().BoolVar(&opts.NoSourceMap, "no-source-map", false, "Skip the source-mapped validator build")
	return cmd
}

func writeBundle(dir string, out *bundler.Artifacts) error {
	stageDir := filepath.Join(dir, out.Stage)
	if err := os.MkdirAll(stageDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stageDir, BundleFile), append(b, '\n'), 0o644)
}

func (c *CLI) printArtifacts(all []*bundler.Artifacts) error {
	switch c.Format {
	case view.FormatJSON, view.FormatYAML:
		return c.Encode(c.Format, all)
	case view.FormatHuman:
	default:
		return fmt.Errorf("output format %s is not supported by bundle", c.Format)
	}

	for _, out := range all {
		c.Println(Highlight("stage %s", out.Stage))
		for _, v := range out.Validators {
			c.Printf("  %-24s %-22s %s\n", v.Name, v.Kind, v.DeploymentHash)
		}
		for _, e := range out.Endpoints {
			c.Printf("  %-24s %-22s\n", e.Name, "Endpoint")
		}
	}
	return nil
}
