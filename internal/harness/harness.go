package harness

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chores/internal/chore"
	"github.com/roach88/chores/internal/clock"
	"github.com/roach88/chores/internal/config"
	"github.com/roach88/chores/internal/engine"
	"github.com/roach88/chores/internal/store"
)

// Run executes a scenario and returns the result.
//
// Each run gets a fresh in-memory store, a fake clock set to the scenario
// start and a fixed tick id, so the trace is fully deterministic.
//
// Returns an error only for setup failures (invalid configuration, store
// failure). Unmet step expectations and failed assertions are reported in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	start, err := time.Parse(time.RFC3339, scenario.Start)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	start = start.UTC()

	data, err := yaml.Marshal(&scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	cfg, err := config.Parse(data, start)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	clk := clock.Fake(start)
	e, err := engine.New(st, cfg.Chores,
		engine.WithClock(clk),
		engine.WithTickIDGenerator(engine.NewFixedGenerator(scenario.Name)),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	r := &runner{store: st, engine: e, clock: clk, result: NewResult()}
	ctx := context.Background()

	for i, step := range scenario.Steps {
		event, err := r.execute(ctx, i, step)
		r.result.Trace = append(r.result.Trace, event)
		checkStep(r.result, i, step, event, err)
	}

	for i, assertion := range scenario.Assertions {
		if err := r.evaluate(ctx, assertion); err != nil {
			r.result.AddError(fmt.Sprintf("assertion %d (%s) failed: %v", i, assertion.Type, err))
		}
	}

	return r.result, nil
}

// runner holds the live state of one scenario execution.
type runner struct {
	store  *store.Store
	engine *engine.Engine
	clock  *clock.FakeClock
	result *Result
}

// execute performs one step. The returned error is the step's own
// outcome, already recorded in the event as a code.
func (r *runner) execute(ctx context.Context, index int, step Step) (TraceEvent, error) {
	event := TraceEvent{Step: index, Do: step.Do}
	var err error

	switch step.Do {
	case StepTick:
		var n int
		n, err = r.engine.Tick(ctx)
		event.Created = &n

	case StepSweep:
		var n int
		n, err = r.engine.Sweep(ctx, r.clock.Now())
		event.Transitioned = &n

	case StepComplete:
		expected, _ := time.Parse(time.RFC3339, step.Expected)
		err = r.engine.Complete(ctx, step.Title, expected)

	case StepAdvance:
		d, _ := time.ParseDuration(step.By)
		r.clock.Advance(d)

	case StepSet:
		at, _ := time.Parse(time.RFC3339, step.At)
		r.clock.Set(at.UTC())

	case StepList:
		var views []chore.View
		views, err = r.engine.List(ctx, engine.ListOptions{Lookback: -1})
		event.Occurrences = make([]string, 0, len(views))
		for _, v := range views {
			event.Occurrences = append(event.Occurrences, formatView(v))
		}

	case StepFlash:
		var f store.Flash
		f, err = r.store.CreateFlash(ctx, step.Contents, r.clock.Now())
		event.FlashID = f.ID

	case StepAck:
		err = r.store.AcknowledgeFlash(ctx, step.ID, r.clock.Now())

	case StepFlashes:
		var flashes []store.Flash
		flashes, err = r.store.ListActiveFlashes(ctx)
		event.Flashes = make([]string, 0, len(flashes))
		for _, f := range flashes {
			event.Flashes = append(event.Flashes, fmt.Sprintf("[%d] %s", f.ID, f.Contents))
		}
	}

	if err != nil {
		event.Error = errorCode(err)
	}
	event.Now = r.clock.Now().Format(time.RFC3339)
	return event, err
}

// checkStep compares a step outcome with its expectation.
func checkStep(result *Result, index int, step Step, event TraceEvent, err error) {
	want := step.Expect
	if want == nil {
		want = &StepExpect{}
	}

	switch {
	case want.Error == "" && err != nil:
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v", index, step.Do, err))
	case want.Error != "" && err == nil:
		result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got success", index, step.Do, want.Error))
	case want.Error != "" && event.Error != want.Error:
		result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %s", index, step.Do, want.Error, event.Error))
	}

	if want.Created != nil && event.Created != nil && *want.Created != *event.Created {
		result.AddError(fmt.Sprintf("step %d (tick): created %d occurrences, expected %d", index, *event.Created, *want.Created))
	}
	if want.Transitioned != nil && event.Transitioned != nil && *want.Transitioned != *event.Transitioned {
		result.AddError(fmt.Sprintf("step %d (sweep): transitioned %d occurrences, expected %d", index, *event.Transitioned, *want.Transitioned))
	}
}

func errorCode(err error) string {
	if code := chore.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}

func formatView(v chore.View) string {
	return fmt.Sprintf("%s@%s %s (stored %s)", v.Title, v.Expected.Format(time.RFC3339), v.Status, v.Stored)
}
