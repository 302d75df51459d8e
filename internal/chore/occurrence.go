package chore

import (
	"fmt"
	"time"
)

// Occurrence is one scheduled instance of a chore.
type Occurrence struct {
	Title      string
	Expected   time.Time
	Status     Status
	CreatedAt  time.Time
	Overdue    time.Time
	Expiration *time.Time
}

// Key is the natural key of an occurrence.
type Key struct {
	Title    string
	Expected time.Time
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%s", k.Title, k.Expected.UTC().Format(time.RFC3339))
}

// Key returns the occurrence's natural key.
func (o Occurrence) Key() Key {
	return Key{Title: o.Title, Expected: o.Expected}
}

// Resolve returns the effective status at now.
func (o Occurrence) Resolve(now time.Time) EffectiveStatus {
	return Resolve(o.Status, o.Overdue, o.Expiration, now)
}

// Validate checks the deadline ordering invariants.
func (o Occurrence) Validate() error {
	if o.Title == "" {
		return &Error{Code: ErrCodeInvalidDefinition, Message: "occurrence title is empty"}
	}
	if !o.Status.IsValid() {
		return &Error{Code: ErrCodeInvalidDefinition, Message: "occurrence status is invalid", Title: o.Title}
	}
	if !o.Overdue.After(o.Expected) {
		return &Error{
			Code:    ErrCodeInvalidDefinition,
			Message: "overdue time must be after expected completion time",
			Title:   o.Title,
		}
	}
	if o.Expiration != nil && o.Expiration.Before(o.Overdue) {
		return &Error{
			Code:    ErrCodeInvalidDefinition,
			Message: "expiration time must not be before overdue time",
			Title:   o.Title,
		}
	}
	return nil
}

// View is the read model handed to clients.
type View struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Expected    time.Time       `json:"expected_completion_time"`
	Status      EffectiveStatus `json:"status"`
	Stored      Status          `json:"stored_status"`

	// Overdue reports that now is at or past the overdue deadline,
	// independent of the terminal state.
	Overdue bool `json:"overdue"`

	// Upcoming reports that the expected time has not arrived yet.
	Upcoming bool `json:"upcoming"`
}

// NewView builds the client view of o at now.
func NewView(o Occurrence, description string, now time.Time) View {
	return View{
		Title:       o.Title,
		Description: description,
		Expected:    o.Expected.UTC(),
		Status:      o.Resolve(now),
		Stored:      o.Status,
		Overdue:     !now.Before(o.Overdue),
		Upcoming:    now.Before(o.Expected),
	}
}
