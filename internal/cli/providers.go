package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// providersCommand creates the providers command.
func (c *CLI) providersCommand() *cobra.Command {
	var (
		refresh     bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "providers <dependency>...",
		Short: "Map dependencies to the packages that provide them",
		Long: `Providers prints one "dependency provider" line per argument.

A dependency that names a package is its own provider. Virtual dependencies
(sh, java-runtime) are searched for; the first match wins unless
--interactive is given and several packages match.`,
		Example: `  pacstage providers sh java-runtime 'libgl>=1.0'
  pacstage providers --interactive java-environment`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(ctx, args, resolveFlags{refresh: refresh})
			if err != nil {
				return err
			}
			if interactive {
				opts.Choose = chooseProvider
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Providers(ctx, args, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, dep := range args {
				fmt.Fprintf(out, "%s %s\n", dep, result.Providers[dep])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached answers and query the database again")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick among several candidate providers")

	return cmd
}
