package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/chores/internal/engine"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Keep chores scheduled and sweep expired ones",
		Long: `Run the scheduler until interrupted.

Every recurrence interval, each chore without an assigned occurrence gets
its next one. Every sweep interval, assigned occurrences past their
expiration are marked missed. Both run once immediately at startup.

Example:
  chores run --config ./chores.yaml
  chores run --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(rootOpts, cmd)
		},
	}

	return cmd
}

func runScheduler(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	env, err := openEnv(opts)
	if err != nil {
		return formatter.Fail("failed to start", err)
	}
	defer env.close()

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Scheduling %d chore(s). Press Ctrl-C to stop.\n", len(env.cfg.Chores))

	sched := engine.NewScheduler(env.engine, env.cfg.RecurrenceInterval, env.cfg.SweepInterval)
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitCommandError, "scheduler error", err)
	}

	slog.Info("scheduler stopped gracefully")
	return nil
}
