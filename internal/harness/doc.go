// Package harness runs chore lifecycle scenarios.
//
// A scenario is a YAML file holding a chores configuration, a start time
// and a list of steps (recurrence ticks, sweeps, completions, clock moves,
// flash operations and listings). Run executes the steps against a fresh
// in-memory store through the real engine, with a fake clock, and records
// a trace: one event per step with its outcome. Assertions are then
// evaluated against the final state.
//
// Traces are deterministic and are compared with golden files in
// testdata/golden via goldie:
//
//	go test ./internal/harness -update
//
// regenerates them.
package harness
