package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pacstage/pkg/pipeline"
)

// stageCommand creates the stage command.
func (c *CLI) stageCommand() *cobra.Command {
	var (
		flags       resolveFlags
		root        string
		dryRun      bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "stage <package>... --root DIR",
		Short: "Resolve packages and install them into an isolated root",
		Long: `Stage resolves the dependency closure of the given packages, maps every
dependency to a concrete provider, writes the plan to DIR/.pacstage/plan.json
and runs the configured installer against DIR.

With --dry-run the root is prepared and the plan written, but the installer
is only printed.`,
		Example: `  pacstage stage base --root /var/tmp/stage
  pacstage stage --dry-run --root ./root bash coreutils`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(ctx, args, flags)
			if err != nil {
				return err
			}
			opts.Root = root
			opts.DryRun = dryRun
			if interactive {
				opts.Choose = chooseProvider
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			var result *pipeline.Result
			err = withResolveSpinner(ctx, func() error {
				var err error
				result, err = runner.Execute(ctx, opts)
				return err
			})
			if err != nil {
				return err
			}

			plan := result.Plan
			if dryRun {
				printInfo("Dry run: %s not installed", pluralize(len(plan.Packages), "package"))
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(result.Command, " "))
				printNextStep("Install with", "pacstage stage --root "+plan.Root+" "+strings.Join(args, " "))
			} else {
				printSuccess("Staged %s into %s", pluralize(len(plan.Packages), "package"), plan.Root)
			}
			printStats(result.Stats.VisitCount, result.Stats.EdgeCount, result.CacheInfo.ResolveHit)
			printKeyValue("plan", plan.ID)
			printFile(plan.Path())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&root, "root", "r", "", "directory to stage into (required)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "prepare the root and write the plan without installing")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick among several candidate providers")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}
