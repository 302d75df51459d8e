package engine

import "fmt"

// ChoreError records a failure while processing one chore during a tick.
// Tick joins one ChoreError per failing chore so the remaining chores are
// still processed.
type ChoreError struct {
	// Title identifies the affected chore.
	Title string

	// Op is the step that failed ("ensure").
	Op string

	// TickID identifies the tick in the logs.
	TickID string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ChoreError) Error() string {
	return fmt.Sprintf("%s %s (tick=%s): %v", e.Op, e.Title, e.TickID, e.Err)
}

func (e *ChoreError) Unwrap() error { return e.Err }

// FailedTitles returns the titles of every ChoreError joined into err, in
// order.
func FailedTitles(err error) []string {
	var titles []string
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if ce, ok := err.(*ChoreError); ok {
			titles = append(titles, ce.Title)
			return
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				walk(e)
			}
		}
	}
	walk(err)
	return titles
}
