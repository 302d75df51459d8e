package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario defines a lifecycle scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden
	// file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the fake clock's initial time (RFC 3339).
	Start string `yaml:"start"`

	// Config is a chores configuration document, validated exactly as a
	// configuration file would be. The database key is ignored.
	Config yaml.Node `yaml:"config"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one action in a scenario. Do selects the action; the other
// fields are its arguments.
type Step struct {
	// Do is one of the Step* constants.
	Do string `yaml:"do"`

	// By is the duration for "advance".
	By string `yaml:"by,omitempty"`

	// At is the RFC 3339 time for "set".
	At string `yaml:"at,omitempty"`

	// Title and Expected identify the occurrence for "complete".
	Title    string `yaml:"title,omitempty"`
	Expected string `yaml:"expected,omitempty"`

	// Contents is the text for "flash".
	Contents string `yaml:"contents,omitempty"`

	// ID is the flash id for "ack".
	ID int64 `yaml:"id,omitempty"`

	// Expect validates the step outcome. If nil the step must succeed.
	Expect *StepExpect `yaml:"expect,omitempty"`
}

// StepExpect specifies the expected outcome of a step.
type StepExpect struct {
	// Error is the expected error code ("NOT_FOUND", "CONFLICT", ...).
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Created is the expected result of a "tick".
	Created *int `yaml:"created,omitempty"`

	// Transitioned is the expected result of a "sweep".
	Transitioned *int `yaml:"transitioned,omitempty"`
}

// Step actions.
const (
	StepTick     = "tick"
	StepSweep    = "sweep"
	StepComplete = "complete"
	StepAdvance  = "advance"
	StepSet      = "set"
	StepList     = "list"
	StepFlash    = "flash"
	StepAck      = "ack"
	StepFlashes  = "flashes"
)

// Assertion validates final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Title and Expected identify an occurrence (status, stored_status).
	Title    string `yaml:"title,omitempty"`
	Expected string `yaml:"expected,omitempty"`

	// Status is the expected effective or stored status.
	Status string `yaml:"status,omitempty"`

	// Count is the expected number (assigned_count, active_flashes).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus        = "status"         // effective status at the final clock time
	AssertStoredStatus  = "stored_status"  // persisted status
	AssertAssignedCount = "assigned_count" // stored-assigned occurrences of a chore
	AssertActiveFlashes = "active_flashes" // unacknowledged flashes
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := time.Parse(time.RFC3339, s.Start); err != nil {
		return fmt.Errorf("start must be RFC 3339: %w", err)
	}

	if s.Config.Kind != yaml.MappingNode {
		return fmt.Errorf("config is required and must be a mapping")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its action.
func validateStep(index int, s *Step) error {
	switch s.Do {
	case StepTick, StepSweep, StepList, StepFlashes:
	case StepComplete:
		if s.Title == "" || s.Expected == "" {
			return fmt.Errorf("steps[%d]: title and expected are required for complete", index)
		}
		if _, err := time.Parse(time.RFC3339, s.Expected); err != nil {
			return fmt.Errorf("steps[%d]: expected must be RFC 3339: %w", index, err)
		}
	case StepAdvance:
		d, err := time.ParseDuration(s.By)
		if err != nil || d <= 0 {
			return fmt.Errorf("steps[%d]: by must be a positive duration for advance", index)
		}
	case StepSet:
		if _, err := time.Parse(time.RFC3339, s.At); err != nil {
			return fmt.Errorf("steps[%d]: at must be RFC 3339 for set: %w", index, err)
		}
	case StepFlash:
		if s.Contents == "" {
			return fmt.Errorf("steps[%d]: contents is required for flash", index)
		}
	case StepAck:
		if s.ID <= 0 {
			return fmt.Errorf("steps[%d]: id is required for ack", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, s.Do)
	}

	if s.Expect != nil {
		if s.Expect.Created != nil && s.Do != StepTick {
			return fmt.Errorf("steps[%d]: expect.created only applies to tick", index)
		}
		if s.Expect.Transitioned != nil && s.Do != StepSweep {
			return fmt.Errorf("steps[%d]: expect.transitioned only applies to sweep", index)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertStatus, AssertStoredStatus:
		if a.Title == "" || a.Expected == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: title, expected and status are required for %s", index, a.Type)
		}
		if _, err := time.Parse(time.RFC3339, a.Expected); err != nil {
			return fmt.Errorf("assertions[%d]: expected must be RFC 3339: %w", index, err)
		}
	case AssertAssignedCount:
		if a.Title == "" {
			return fmt.Errorf("assertions[%d]: title is required for assigned_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertActiveFlashes:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
