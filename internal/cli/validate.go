package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/chores/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Chores []ChoreSchedule `json:"chores"`
}

// ChoreSchedule describes one validated chore.
type ChoreSchedule struct {
	Title          string    `json:"title"`
	RecurrenceRule string    `json:"recurrence_rule"`
	NextFiring     time.Time `json:"next_firing"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration without touching the database",
		Long: `Validate the configuration file against the schema, parse every
recurrence rule and check that each one fires again.

Exit codes:
  0 - Configuration valid
  2 - Configuration invalid`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	now := opts.clock().Now()
	cfg, err := config.Load(opts.Config, now)
	if err != nil {
		return formatter.Fail("invalid configuration", err)
	}

	formatter.VerboseLog("Loaded %d chore(s) from %s", len(cfg.Chores), opts.Config)

	result := ValidationResult{Valid: true, Chores: []ChoreSchedule{}}
	for _, def := range cfg.Chores {
		// Probe already succeeded during Load.
		next, _ := def.Rule.Next(now)
		result.Chores = append(result.Chores, ChoreSchedule{
			Title:          def.Title,
			RecurrenceRule: def.Rule.String(),
			NextFiring:     next,
		})
	}

	return formatter.SuccessText(result, func(w io.Writer) {
		fmt.Fprintf(w, "✓ Configuration valid (%d chore(s))\n", len(result.Chores))
		for _, c := range result.Chores {
			fmt.Fprintf(w, "  %s  %q  next %s\n", c.Title, c.RecurrenceRule, c.NextFiring.Format(time.RFC3339))
		}
	})
}
