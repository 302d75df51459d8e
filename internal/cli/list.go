package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/chores/internal/chore"
	"github.com/roach88/chores/internal/engine"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	LookbackDays int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List occurrences with their current status",
		Long: `List every assigned occurrence and every occurrence expected within the
lookback window, with the status as of now. Overdue is computed at read
time; it is never stored.

Example:
  chores list
  chores list --lookback-days 30 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.LookbackDays, "lookback-days", 7, "include finished occurrences expected within this many days (negative: all)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	env, err := openEnv(opts.RootOptions)
	if err != nil {
		return formatter.Fail("failed to load", err)
	}
	defer env.close()

	lookback := time.Duration(opts.LookbackDays) * 24 * time.Hour
	if opts.LookbackDays < 0 {
		lookback = -1
	}
	if opts.LookbackDays == 0 {
		// Zero means "assigned only, plus anything not yet due".
		lookback = time.Nanosecond
	}

	views, err := env.engine.List(cmd.Context(), engine.ListOptions{Lookback: lookback})
	if err != nil {
		return formatter.Fail("failed to list occurrences", err)
	}

	return formatter.SuccessText(views, func(w io.Writer) {
		writeViews(w, views)
	})
}

func writeViews(w io.Writer, views []chore.View) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No occurrences")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tEXPECTED\tSTATUS\tDESCRIPTION")
	for _, v := range views {
		status := string(v.Status)
		if v.Upcoming && v.Status == chore.EffectiveAssigned {
			status = "upcoming"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Title, v.Expected.Format(time.RFC3339), status, v.Description)
	}
	tw.Flush()
}
