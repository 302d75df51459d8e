package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/chores/internal/engine"
)

// TickResult is the output of the tick command.
type TickResult struct {
	Created int      `json:"created"`
	Failed  []string `json:"failed,omitempty"`
}

// NewTickCommand creates the tick command.
func NewTickCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one recurrence tick",
		Long: `Create the next occurrence of every chore that has no assigned occurrence.

Running tick repeatedly is safe: a chore never has more than one assigned
occurrence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			env, err := openEnv(rootOpts)
			if err != nil {
				return formatter.Fail("failed to load", err)
			}
			defer env.close()

			created, err := env.engine.Tick(cmd.Context())
			result := TickResult{Created: created, Failed: engine.FailedTitles(err)}
			if err != nil {
				return formatter.FailWithDetails(fmt.Sprintf("tick created %d occurrence(s) with failures", created), err, result)
			}

			return formatter.SuccessText(result, func(w io.Writer) {
				fmt.Fprintf(w, "Created %d occurrence(s)\n", created)
			})
		},
	}
}
