package chore

import (
	"errors"
	"time"

	"github.com/roach88/chores/internal/cron"
)

// Definition is a recurring chore as configured.
type Definition struct {
	Title       string
	Description string
	Rule        cron.Schedule

	// OverdueOffset is added to the expected time to get the overdue
	// deadline. Must be positive.
	OverdueOffset time.Duration

	// ExpirationOffset is added to the expected time to get the expiration
	// deadline. Zero means the occurrence expires when the rule next fires
	// after its expected time.
	ExpirationOffset time.Duration
}

// NewDefinition parses rule and checks the offsets. The title is
// normalised with NormalizeTitle.
//
// A rule that does not parse yields ErrMalformedRule; the offsets yield
// ErrInvalidDefinition. Offsets must be whole seconds, the store's
// resolution. Satisfiability is checked separately by Probe.
func NewDefinition(title, description, rule string, overdue, expiration time.Duration) (Definition, error) {
	title = NormalizeTitle(title)
	if title == "" {
		return Definition{}, &Error{Code: ErrCodeInvalidDefinition, Field: "title", Message: "title is required"}
	}

	schedule, err := cron.Parse(rule)
	if err != nil {
		e := &Error{Code: ErrCodeMalformedRule, Title: title, Message: "invalid recurrence rule", Err: err}
		var re *cron.RuleError
		if errors.As(err, &re) {
			e.Field = re.Field
		}
		return Definition{}, e
	}

	if overdue <= 0 {
		return Definition{}, &Error{
			Code:    ErrCodeInvalidDefinition,
			Title:   title,
			Field:   "overdue_offset",
			Message: "overdue offset must be positive",
		}
	}
	if overdue%time.Second != 0 {
		return Definition{}, &Error{
			Code:    ErrCodeInvalidDefinition,
			Title:   title,
			Field:   "overdue_offset",
			Message: "overdue offset must be a whole number of seconds",
		}
	}
	if expiration%time.Second != 0 {
		return Definition{}, &Error{
			Code:    ErrCodeInvalidDefinition,
			Title:   title,
			Field:   "expiration_offset",
			Message: "expiration offset must be a whole number of seconds",
		}
	}
	if expiration != 0 && expiration < overdue {
		return Definition{}, &Error{
			Code:    ErrCodeInvalidDefinition,
			Title:   title,
			Field:   "expiration_offset",
			Message: "expiration offset must not be shorter than overdue offset",
		}
	}

	return Definition{
		Title:            title,
		Description:      description,
		Rule:             schedule,
		OverdueOffset:    overdue,
		ExpirationOffset: expiration,
	}, nil
}

// Probe checks that the rule fires at least once after now. It fails with
// ErrUnsatisfiable otherwise.
func (d Definition) Probe(now time.Time) error {
	if _, err := d.Rule.Next(now); err != nil {
		return &Error{Code: ErrCodeUnsatisfiable, Title: d.Title, Message: "recurrence rule never fires", Err: err}
	}
	return nil
}

// NewOccurrence builds an assigned occurrence expected at the given time.
func (d Definition) NewOccurrence(expected, createdAt time.Time) Occurrence {
	expected = expected.UTC()
	overdue := expected.Add(d.OverdueOffset)
	return Occurrence{
		Title:      d.Title,
		Expected:   expected,
		Status:     StatusAssigned,
		CreatedAt:  createdAt.UTC(),
		Overdue:    overdue,
		Expiration: d.expiration(expected, overdue),
	}
}

func (d Definition) expiration(expected, overdue time.Time) *time.Time {
	if d.ExpirationOffset > 0 {
		at := expected.Add(d.ExpirationOffset)
		return &at
	}
	next, err := d.Rule.Next(expected)
	if err != nil {
		return nil
	}
	if next.Before(overdue) {
		next = overdue
	}
	return &next
}
