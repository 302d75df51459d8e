package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/chores/internal/store"
)

// NewFlashCommand creates the flash command group.
func NewFlashCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flash",
		Short: "Post, list and acknowledge flash notices",
		Long: `Flashes are short notices shown until someone acknowledges them.

Example:
  chores flash add "Water is off until noon"
  chores flash list
  chores flash ack 3`,
	}

	cmd.AddCommand(newFlashAddCommand(rootOpts))
	cmd.AddCommand(newFlashListCommand(rootOpts))
	cmd.AddCommand(newFlashAckCommand(rootOpts))

	return cmd
}

func newFlashAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <contents>...",
		Short: "Post a flash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			env, err := openEnv(rootOpts)
			if err != nil {
				return formatter.Fail("failed to load", err)
			}
			defer env.close()

			flash, err := env.store.CreateFlash(cmd.Context(), strings.Join(args, " "), rootOpts.clock().Now())
			if err != nil {
				return formatter.Fail("failed to post flash", err)
			}

			return formatter.SuccessText(flash, func(w io.Writer) {
				fmt.Fprintf(w, "Posted flash %d\n", flash.ID)
			})
		},
	}
}

func newFlashListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List unacknowledged flashes, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			env, err := openEnv(rootOpts)
			if err != nil {
				return formatter.Fail("failed to load", err)
			}
			defer env.close()

			flashes, err := env.store.ListActiveFlashes(cmd.Context())
			if err != nil {
				return formatter.Fail("failed to list flashes", err)
			}

			return formatter.SuccessText(flashes, func(w io.Writer) {
				writeFlashes(w, flashes)
			})
		},
	}
}

func newFlashAckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge a flash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				_ = formatter.Error("INVALID_ARGUMENT", fmt.Sprintf("flash id %q is not an integer", args[0]), nil)
				return WrapExitError(ExitCommandError, "invalid flash id", err)
			}

			env, err := openEnv(rootOpts)
			if err != nil {
				return formatter.Fail("failed to load", err)
			}
			defer env.close()

			if err := env.store.AcknowledgeFlash(cmd.Context(), id, rootOpts.clock().Now()); err != nil {
				return formatter.Fail("failed to acknowledge flash", err)
			}

			return formatter.SuccessText(map[string]int64{"acknowledged": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Acknowledged flash %d\n", id)
			})
		},
	}
}

func writeFlashes(w io.Writer, flashes []store.Flash) {
	if len(flashes) == 0 {
		fmt.Fprintln(w, "No flashes")
		return
	}
	for _, f := range flashes {
		fmt.Fprintf(w, "[%d] %s  %s\n", f.ID, f.CreatedAt.Format(time.RFC3339), f.Contents)
	}
}
