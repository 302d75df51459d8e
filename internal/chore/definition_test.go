package chore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chores/internal/cron"
)

func TestNewDefinition(t *testing.T) {
	def, err := NewDefinition("  trash ", "Take the bins out", "0 18 * * 0", 2*time.Hour, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "trash", def.Title)
	assert.Equal(t, "0 18 * * 0", def.Rule.String())
	assert.Equal(t, 2*time.Hour, def.OverdueOffset)
	assert.Equal(t, 24*time.Hour, def.ExpirationOffset)
}

func TestNewDefinition_Errors(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		rule       string
		overdue    time.Duration
		expiration time.Duration
		code       ErrorCode
		field      string
	}{
		{"empty_title", "  ", "0 9 * * *", time.Hour, 0, ErrCodeInvalidDefinition, "title"},
		{"malformed_rule", "dishes", "0 9 * *", time.Hour, 0, ErrCodeMalformedRule, "expression"},
		{"out_of_range_hour", "dishes", "0 25 * * *", time.Hour, 0, ErrCodeMalformedRule, "hour"},
		{"zero_overdue", "dishes", "0 9 * * *", 0, 0, ErrCodeInvalidDefinition, "overdue_offset"},
		{"negative_overdue", "dishes", "0 9 * * *", -time.Hour, 0, ErrCodeInvalidDefinition, "overdue_offset"},
		{"sub_second_overdue", "dishes", "0 9 * * *", 500 * time.Millisecond, 0, ErrCodeInvalidDefinition, "overdue_offset"},
		{"fractional_overdue", "dishes", "0 9 * * *", 1500 * time.Millisecond, 0, ErrCodeInvalidDefinition, "overdue_offset"},
		{"fractional_expiration", "dishes", "0 9 * * *", time.Hour, time.Hour + time.Millisecond, ErrCodeInvalidDefinition, "expiration_offset"},
		{"expiration_before_overdue", "dishes", "0 9 * * *", 2 * time.Hour, time.Hour, ErrCodeInvalidDefinition, "expiration_offset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefinition(tt.title, "", tt.rule, tt.overdue, tt.expiration)
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))
			assert.True(t, IsConfigError(err))

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestNewDefinition_MalformedWrapsCronError(t *testing.T) {
	_, err := NewDefinition("dishes", "", "61 * * * *", time.Hour, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRule))
	assert.True(t, errors.Is(err, cron.ErrMalformedRule))
}

func TestDefinition_Probe(t *testing.T) {
	now := ts("2024-01-01T00:00:00Z")

	ok, err := NewDefinition("dishes", "", "0 9 * * *", time.Hour, 0)
	require.NoError(t, err)
	assert.NoError(t, ok.Probe(now))

	never, err := NewDefinition("feb31", "", "0 0 31 2 *", time.Hour, 0)
	require.NoError(t, err)
	err = never.Probe(now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsatisfiable))
	assert.True(t, errors.Is(err, cron.ErrUnsatisfiable))
	assert.True(t, IsConfigError(err))
}

func TestDefinition_NewOccurrence_ExplicitOffsets(t *testing.T) {
	def, err := NewDefinition("trash", "", "0 18 * * 0", 2*time.Hour, 24*time.Hour)
	require.NoError(t, err)

	o := def.NewOccurrence(ts("2024-01-07T18:00:00Z"), ts("2024-01-07T17:00:00Z"))
	assert.Equal(t, "trash", o.Title)
	assert.Equal(t, StatusAssigned, o.Status)
	assert.Equal(t, ts("2024-01-07T18:00:00Z"), o.Expected)
	assert.Equal(t, ts("2024-01-07T20:00:00Z"), o.Overdue)
	require.NotNil(t, o.Expiration)
	assert.Equal(t, ts("2024-01-08T18:00:00Z"), *o.Expiration)
	assert.Equal(t, ts("2024-01-07T17:00:00Z"), o.CreatedAt)
	assert.NoError(t, o.Validate())
}

func TestDefinition_NewOccurrence_ExpiresAtNextFiring(t *testing.T) {
	def, err := NewDefinition("dishes", "", "0 9 * * *", time.Hour, 0)
	require.NoError(t, err)

	o := def.NewOccurrence(ts("2024-01-01T09:00:00Z"), ts("2024-01-01T08:00:00Z"))
	require.NotNil(t, o.Expiration)
	assert.Equal(t, ts("2024-01-02T09:00:00Z"), *o.Expiration)
}

func TestDefinition_NewOccurrence_ExpirationClampedToOverdue(t *testing.T) {
	// Hourly rule with a two hour grace period: the next firing comes
	// before the overdue deadline.
	def, err := NewDefinition("plants", "", "@hourly", 2*time.Hour, 0)
	require.NoError(t, err)

	o := def.NewOccurrence(ts("2024-01-01T09:00:00Z"), ts("2024-01-01T08:30:00Z"))
	require.NotNil(t, o.Expiration)
	assert.Equal(t, o.Overdue, *o.Expiration)
	assert.NoError(t, o.Validate())
}

func TestOccurrence_Validate(t *testing.T) {
	base := Occurrence{
		Title:    "trash",
		Expected: ts("2024-01-07T18:00:00Z"),
		Status:   StatusAssigned,
		Overdue:  ts("2024-01-07T20:00:00Z"),
	}
	require.NoError(t, base.Validate())

	noOverdueGap := base
	noOverdueGap.Overdue = base.Expected
	assert.Error(t, noOverdueGap.Validate())

	earlyExpiry := base
	earlyExpiry.Expiration = ptr(ts("2024-01-07T19:00:00Z"))
	assert.Error(t, earlyExpiry.Validate())

	noStatus := base
	noStatus.Status = Status{}
	assert.Error(t, noStatus.Validate())
}

func TestNormalizeTitle(t *testing.T) {
	decomposed := " cafe\u0301\t"
	assert.Equal(t, "caf\u00e9", NormalizeTitle(decomposed))
	assert.Equal(t, "trash", NormalizeTitle("trash"))
}
