package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catapillie/marin/internal/config"
	"github.com/catapillie/marin/internal/manifest"
	"github.com/catapillie/marin/internal/pipeline"
)

// newRootCommand builds the single `marin [FILES...]` command (§6): stage
// the standard library and every named file, then run the full pipeline.
// A marin.yaml manifest in the working directory (or above it) may
// override the standard library root; see internal/manifest.
func newRootCommand() *cobra.Command {
	var noStd bool

	cmd := &cobra.Command{
		Use:           "marin [FILES...]",
		Short:         "Compile and run a Marin program",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getwd: %w", err)
			}

			opts := config.Options{WorkingDir: wd}
			if !noStd {
				opts.BuiltinRoot = defaultStdRoot()
			}
			if m, dir, ok, err := manifest.Find(wd); err == nil && ok {
				if root := m.ResolveStdRoot(dir); root != "" {
					opts.BuiltinRoot = root
				}
			}

			ctx := &pipeline.PipelineContext{
				Opts:      opts,
				UserPaths: args,
				Execute:   true,
			}
			ctx = pipeline.Default().Run(ctx)

			printReports(cmd.ErrOrStderr(), ctx.Batch.Sorted())

			if ctx.FatalErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ctx.FatalErr)
				os.Exit(1)
			}
			if ctx.Batch.HasErrors() {
				os.Exit(1)
			}
			if ctx.RanVM {
				fmt.Fprintln(cmd.OutOrStdout(), ctx.Result.Inspect(ctx.VM.Heap()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noStd, "no-std", false, "do not stage the standard library")
	return cmd
}

// defaultStdRoot locates the standard library staged next to the marin
// binary under std/ (§6: "copied next to the binary at build time").
func defaultStdRoot() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	root := filepath.Join(filepath.Dir(exe), "std")
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return ""
	}
	return root
}
