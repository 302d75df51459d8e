package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chores/internal/chore"
	"github.com/roach88/chores/internal/clock"
	"github.com/roach88/chores/internal/store"
)

const trashConfig = `database: chores.db
recurrence_interval: 1m
sweep_interval: 1m
chores:
  - title: trash
    description: Take the bins out
    recurrence_rule: "0 18 * * 0"
    overdue_offset: 2h
    expiration_offset: 24h
`

// household is a config directory plus a fake clock shared by the
// commands run against it.
type household struct {
	t      *testing.T
	config string
	clock  *clock.FakeClock
}

func newHousehold(t *testing.T, configYAML string) *household {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chores.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0644))
	return &household{
		t:      t,
		config: path,
		clock:  clock.Fake(time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC)),
	}
}

// run executes the root command with args and returns stdout.
func (h *household) run(args ...string) (string, error) {
	return h.runContext(context.Background(), args...)
}

func (h *household) runContext(ctx context.Context, args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCommand(&RootOptions{Clock: h.clock})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", h.config}, args...))
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func (h *household) openStore() *store.Store {
	h.t.Helper()
	st, err := store.Open(filepath.Join(filepath.Dir(h.config), "chores.db"))
	require.NoError(h.t, err)
	h.t.Cleanup(func() { st.Close() })
	return st
}

func TestTickCommand(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("tick")
	require.NoError(t, err)
	assert.Equal(t, "Created 1 occurrence(s)\n", out)

	out, err = h.run("tick")
	require.NoError(t, err)
	assert.Equal(t, "Created 0 occurrence(s)\n", out)
}

func TestTickCommandJSON(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("--format", "json", "tick")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TickResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Created)
	assert.Empty(t, resp.Data.Failed)
}

func TestListCommand(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("list")
	require.NoError(t, err)
	assert.Equal(t, "No occurrences\n", out)

	_, err = h.run("tick")
	require.NoError(t, err)

	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "trash")
	assert.Contains(t, out, "2024-01-07T18:00:00Z")
	assert.Contains(t, out, "upcoming")
	assert.Contains(t, out, "Take the bins out")

	h.clock.Set(time.Date(2024, 1, 7, 20, 30, 0, 0, time.UTC))
	out, err = h.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "overdue")
}

func TestListCommandJSON(t *testing.T) {
	h := newHousehold(t, trashConfig)
	_, err := h.run("tick")
	require.NoError(t, err)

	h.clock.Set(time.Date(2024, 1, 7, 20, 0, 0, 0, time.UTC))
	out, err := h.run("--format", "json", "list")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []chore.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)

	v := resp.Data[0]
	assert.Equal(t, "trash", v.Title)
	assert.Equal(t, chore.EffectiveOverdue, v.Status)
	assert.Equal(t, chore.StatusAssigned, v.Stored)
	assert.True(t, v.Overdue)
	assert.False(t, v.Upcoming)
}

func TestCompleteCommand(t *testing.T) {
	h := newHousehold(t, trashConfig)
	_, err := h.run("tick")
	require.NoError(t, err)

	out, err := h.run("complete", "trash", "2024-01-07T18:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "Completed trash (expected 2024-01-07T18:00:00Z)\n", out)

	out, err = h.run("complete", "trash", "1704650400")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [CONFLICT]")
	assert.Contains(t, out, "already completed")
}

func TestCompleteCommandErrors(t *testing.T) {
	h := newHousehold(t, trashConfig)
	_, err := h.run("tick")
	require.NoError(t, err)

	tests := []struct {
		name     string
		args     []string
		wantExit int
		wantOut  string
	}{
		{"unknown_occurrence", []string{"complete", "trash", "2024-01-14T18:00:00Z"}, ExitFailure, "Error [NOT_FOUND]"},
		{"unknown_chore", []string{"complete", "laundry", "2024-01-07T18:00:00Z"}, ExitFailure, "Error [NOT_FOUND]"},
		{"bad_time", []string{"complete", "trash", "sunday"}, ExitCommandError, "Error [INVALID_ARGUMENT]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestCompleteCommandMissed(t *testing.T) {
	h := newHousehold(t, trashConfig)
	_, err := h.run("tick")
	require.NoError(t, err)

	h.clock.Set(time.Date(2024, 1, 8, 18, 0, 0, 0, time.UTC))
	out, err := h.run("sweep")
	require.NoError(t, err)
	assert.Equal(t, "Marked 1 occurrence(s) missed\n", out)

	out, err = h.run("sweep")
	require.NoError(t, err)
	assert.Equal(t, "Marked 0 occurrence(s) missed\n", out)

	out, err = h.run("--format", "json", "complete", "trash", "2024-01-07T18:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "already missed")
}

func TestFlashCommands(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("flash", "list")
	require.NoError(t, err)
	assert.Equal(t, "No flashes\n", out)

	out, err = h.run("flash", "add", "Water", "is", "off")
	require.NoError(t, err)
	assert.Equal(t, "Posted flash 1\n", out)

	h.clock.Advance(time.Minute)
	_, err = h.run("flash", "add", "Plumber on Tuesday")
	require.NoError(t, err)

	out, err = h.run("flash", "list")
	require.NoError(t, err)
	assert.Equal(t,
		"[2] 2024-01-06T12:01:00Z  Plumber on Tuesday\n"+
			"[1] 2024-01-06T12:00:00Z  Water is off\n", out)

	out, err = h.run("flash", "ack", "1")
	require.NoError(t, err)
	assert.Equal(t, "Acknowledged flash 1\n", out)

	_, err = h.run("flash", "ack", "1")
	require.NoError(t, err)

	out, err = h.run("flash", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "Water is off")
}

func TestFlashCommandErrors(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("flash", "ack", "42")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NOT_FOUND]")

	out, err = h.run("flash", "ack", "first")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [INVALID_ARGUMENT]")

	out, err = h.run("flash", "add", "   ")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [INVALID_DEFINITION]")
}

func TestValidateCommand(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Configuration valid (1 chore(s))")
	assert.Contains(t, out, "next 2024-01-07T18:00:00Z")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(h.config), "chores.db"))
	assert.True(t, os.IsNotExist(statErr), "validate must not create the database")
}

func TestValidateCommandJSON(t *testing.T) {
	h := newHousehold(t, trashConfig)

	out, err := h.run("--format", "json", "validate")
	require.NoError(t, err)

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Chores, 1)
	assert.Equal(t, "trash", resp.Data.Chores[0].Title)
	assert.Equal(t, "0 18 * * 0", resp.Data.Chores[0].RecurrenceRule)
	assert.Equal(t, time.Date(2024, 1, 7, 18, 0, 0, 0, time.UTC), resp.Data.Chores[0].NextFiring.UTC())
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantOut string
	}{
		{"malformed_rule", "chores:\n  - title: trash\n    recurrence_rule: \"61 * * * *\"\n    overdue_offset: 1h\n", "MALFORMED_RULE"},
		{"unsatisfiable", "chores:\n  - title: trash\n    recurrence_rule: \"0 0 31 2 *\"\n    overdue_offset: 1h\n", "UNSATISFIABLE"},
		{"unknown_key", "chores: []\ncolour: blue\n", "INVALID_DEFINITION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHousehold(t, tt.config)
			for _, args := range [][]string{{"validate"}, {"tick"}, {"list"}} {
				out, err := h.run(args...)
				require.Error(t, err)
				assert.Equal(t, ExitCommandError, GetExitCode(err))
				assert.Contains(t, out, tt.wantOut)
			}
		})
	}
}

func TestMissingConfiguration(t *testing.T) {
	h := newHousehold(t, trashConfig)
	h.config = filepath.Join(t.TempDir(), "absent.yaml")

	_, err := h.run("tick")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommand(t *testing.T) {
	h := newHousehold(t, trashConfig)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := h.runContext(ctx, "run")
		done <- err
	}()

	st := h.openStore()
	require.Eventually(t, func() bool {
		n, err := st.CountAssigned(context.Background(), "trash")
		return err == nil && n == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}
