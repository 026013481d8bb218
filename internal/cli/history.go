package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pacstage/pkg/errors"
	"github.com/matzehuels/pacstage/pkg/history"
)

// historyCommand creates the history command group.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded runs",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())

	return cmd
}

// historyListCommand creates the "history list" subcommand.
func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(runs, time.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultLimit, "maximum number of runs to list")
	return cmd
}

// historyShowCommand creates the "history show" subcommand.
func (c *CLI) historyShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := c.newHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return errors.New(errors.ErrCodeNotFound, "run %q not found", args[0])
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			writeRun(out, run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

// historyTable renders runs as a table. now anchors relative times.
func historyTable(runs []*history.Run, now time.Time) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := iconSuccess
		if r.Failed() {
			status = iconError
		}
		rows = append(rows, []string{
			status,
			shortID(r.ID),
			r.Command,
			strings.Join(r.Seeds, " "),
			fmt.Sprint(len(r.Packages)),
			r.Duration.Round(time.Millisecond).String(),
			formatRelativeTime(r.StartedAt, now),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Command", "Packages", "Count", "Duration", "Started").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(runs) {
				return base
			}
			if col == 0 {
				if runs[row].Failed() {
					return base.Foreground(colorRed)
				}
				return base.Foreground(colorGreen)
			}
			if col == 1 || col >= 5 {
				return base.Foreground(colorDim)
			}
			return base
		})

	return t.Render()
}

func writeRun(w io.Writer, r *history.Run) {
	fmt.Fprintf(w, "%-10s %s\n", "id", r.ID)
	fmt.Fprintf(w, "%-10s %s\n", "command", r.Command)
	fmt.Fprintf(w, "%-10s %s\n", "seeds", strings.Join(r.Seeds, " "))
	fmt.Fprintf(w, "%-10s %s\n", "started", r.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "%-10s %s\n", "duration", r.Duration.Round(time.Millisecond))
	if r.PlanID != "" {
		fmt.Fprintf(w, "%-10s %s\n", "plan", r.PlanID)
	}
	if r.Failed() {
		fmt.Fprintf(w, "%-10s %s\n", "error", r.Error)
	}
	if len(r.Packages) > 0 {
		fmt.Fprintf(w, "%-10s %d\n", "packages", len(r.Packages))
		for _, p := range r.Packages {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

// shortID returns the first block of a UUID.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
