package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/chores/internal/chore"
)

// CompleteResult is the output of the complete command.
type CompleteResult struct {
	Title    string    `json:"title"`
	Expected time.Time `json:"expected_completion_time"`
}

// NewCompleteCommand creates the complete command.
func NewCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <title> <expected-time>",
		Short: "Mark an occurrence completed",
		Long: `Mark the occurrence of a chore expected at the given time completed.

The expected time is RFC 3339 or unix seconds, as shown by "chores list".
Overdue occurrences can be completed; missed ones cannot.

Exit codes:
  0 - Completed
  1 - No such occurrence, or it is already completed or missed
  2 - Command error

Example:
  chores complete trash 2024-01-07T18:00:00Z
  chores complete trash 1704650400`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			expected, err := parseExpected(args[1])
			if err != nil {
				_ = formatter.Error("INVALID_ARGUMENT", err.Error(), nil)
				return WrapExitError(ExitCommandError, "invalid expected time", err)
			}

			env, err := openEnv(rootOpts)
			if err != nil {
				return formatter.Fail("failed to load", err)
			}
			defer env.close()

			if err := env.engine.Complete(cmd.Context(), args[0], expected); err != nil {
				return formatter.Fail("failed to complete", err)
			}

			result := CompleteResult{Title: chore.NormalizeTitle(args[0]), Expected: expected.UTC()}
			return formatter.SuccessText(result, func(w io.Writer) {
				fmt.Fprintf(w, "Completed %s (expected %s)\n", result.Title, result.Expected.Format(time.RFC3339))
			})
		},
	}
}

// parseExpected accepts RFC 3339 or unix seconds.
func parseExpected(s string) (time.Time, error) {
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected time %q is neither RFC 3339 nor unix seconds", s)
	}
	return t.UTC(), nil
}
