package chore

import "time"

// Resolve maps stored state and the current time to the effective status.
//
// Terminal stored states are returned unchanged. Otherwise the expiration
// deadline wins over the overdue deadline. A nil expiration never expires,
// so such an occurrence stays overdue until completed.
//
// Resolve is pure: it reads nothing but its arguments and writes nothing.
func Resolve(stored Status, overdue time.Time, expiration *time.Time, now time.Time) EffectiveStatus {
	switch stored {
	case StatusCompleted:
		return EffectiveCompleted
	case StatusMissed:
		return EffectiveMissed
	}
	if expiration != nil && !now.Before(*expiration) {
		return EffectiveMissed
	}
	if !now.Before(overdue) {
		return EffectiveOverdue
	}
	return EffectiveAssigned
}
