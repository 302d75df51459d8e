package harness

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Step int    `json:"step"`
	Do   string `json:"do"`
	Now  string `json:"now"` // clock time after the step, RFC 3339

	Created      *int   `json:"created,omitempty"`
	Transitioned *int   `json:"transitioned,omitempty"`
	FlashID      int64  `json:"flash_id,omitempty"`
	Error        string `json:"error,omitempty"` // error code

	// Occurrences is filled by "list": "title@expected status (stored s)".
	Occurrences []string `json:"occurrences,omitempty"`

	// Flashes is filled by "flashes": "[id] contents".
	Flashes []string `json:"flashes,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step met its expectation and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
