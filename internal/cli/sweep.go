package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// SweepResult is the output of the sweep command.
type SweepResult struct {
	Transitioned int `json:"transitioned"`
}

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark expired occurrences missed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			env, err := openEnv(rootOpts)
			if err != nil {
				return formatter.Fail("failed to load", err)
			}
			defer env.close()

			n, err := env.engine.Sweep(cmd.Context(), rootOpts.clock().Now())
			if err != nil {
				return formatter.Fail(fmt.Sprintf("sweep stopped after %d transition(s)", n), err)
			}

			return formatter.SuccessText(SweepResult{Transitioned: n}, func(w io.Writer) {
				fmt.Fprintf(w, "Marked %d occurrence(s) missed\n", n)
			})
		},
	}
}
