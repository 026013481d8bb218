package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pacstage/pkg/pipeline"
	"github.com/matzehuels/pacstage/pkg/render/nodelink"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		flags    resolveFlags
		unique   bool
		graph    string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [package]...",
		Short: "Print the dependency closure of packages",
		Long: `Resolve walks the dependencies of the given packages breadth-first and
prints every reachable package name, one per line, with version constraints
stripped.

The default order is discovery order. Packages reachable through differently
constrained tokens (foo, foo>=2) may appear more than once; --unique prints
the sorted, deduplicated set instead.`,
		Example: `  pacstage resolve bash
  pacstage resolve --unique base vim
  pacstage resolve --graph deps.svg python
  pacstage --pkgdir ./packages resolve mypkg`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(ctx, args, flags)
			if err != nil {
				return err
			}
			opts.Unique = unique

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			var result *pipeline.Result
			err = withResolveSpinner(ctx, func() error {
				var err error
				result, err = runner.Resolve(ctx, opts)
				return err
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range result.Packages {
				fmt.Fprintln(out, name)
			}
			printStats(len(result.Packages), result.Stats.EdgeCount, result.CacheInfo.ResolveHit)

			if graph != "" {
				dot := nodelink.ToDOT(result.Resolution, nodelink.Options{Detailed: detailed})
				data, err := nodelink.Render(dot, nodelink.FormatFromPath(graph))
				if err != nil {
					return err
				}
				if err := os.WriteFile(graph, data, 0o644); err != nil {
					return fmt.Errorf("write graph: %w", err)
				}
				printFile(graph)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&unique, "unique", "u", false, "print the sorted, deduplicated package set")
	cmd.Flags().StringVarP(&graph, "graph", "g", "", "also write the dependency graph (.dot, .svg, .pdf or .png)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label graph nodes with depth and raw tokens")

	return cmd
}
