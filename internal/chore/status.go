package chore

import (
	"encoding/json"
	"fmt"
)

// Status is the persisted state of an occurrence. The zero value is
// invalid; only the three declared constants exist.
type Status struct {
	name string
}

var (
	StatusAssigned  = Status{"assigned"}
	StatusCompleted = Status{"completed"}
	StatusMissed    = Status{"missed"}
)

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case StatusAssigned.name:
		return StatusAssigned, nil
	case StatusCompleted.name:
		return StatusCompleted, nil
	case StatusMissed.name:
		return StatusMissed, nil
	default:
		return Status{}, fmt.Errorf("unknown status %q", s)
	}
}

func (s Status) String() string { return s.name }

// IsValid reports whether s is one of the declared statuses.
func (s Status) IsValid() bool { return s.name != "" }

// IsTerminal reports whether no further transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusMissed
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("marshal invalid status")
	}
	return json.Marshal(s.name)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	parsed, err := ParseStatus(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// EffectiveStatus is the status a client observes at a given instant.
type EffectiveStatus string

const (
	EffectiveAssigned  EffectiveStatus = "assigned"
	EffectiveOverdue   EffectiveStatus = "overdue"
	EffectiveCompleted EffectiveStatus = "completed"
	EffectiveMissed    EffectiveStatus = "missed"
)

func (s EffectiveStatus) String() string { return string(s) }
