// Package store provides SQLite-backed durable storage for chore
// occurrences and flashes.
//
// # Critical Patterns
//
// Natural-key idempotency:
//   - PRIMARY KEY(title, expected_completion_time) on chores
//   - InsertOccurrence uses ON CONFLICT DO NOTHING; a duplicate is success
//
// One assigned occurrence per chore:
//   - UNIQUE INDEX on chores(title) WHERE status = 'assigned'
//   - Overlapping recurrence ticks cannot create a second assigned row,
//     even when they compute different candidate times
//
// Compare-and-swap transitions:
//   - CompleteOccurrence and MarkMissed update WHERE status = 'assigned'
//   - Exactly one of two racing writers observes RowsAffected == 1
//
// Only assigned, completed and missed are persisted (CHECK constraint).
// Timestamps are INTEGER unix seconds in UTC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - _txlock=immediate: Transactions take the write lock up front
//
// Busy and locked errors, closed connections and expired deadlines are
// reported as chore.ErrStoreUnavailable.
package store
