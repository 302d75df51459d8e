package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/chores/internal/chore"
)

const occurrenceColumns = `title, expected_completion_time, status, created_at, overdue_time, expiration_time`

// InsertOccurrence inserts o unless a row already occupies its natural key
// or the chore already has an assigned occurrence. Returns whether a row
// was written. A skipped insert is not an error.
//
// Rows violating the deadline CHECK constraints are rejected with an error.
func (s *Store) InsertOccurrence(ctx context.Context, o chore.Occurrence) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO chores
		(title, expected_completion_time, status, created_at, overdue_time, expiration_time)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		o.Title,
		toUnix(o.Expected),
		o.Status.String(),
		toUnix(o.CreatedAt),
		toUnix(o.Overdue),
		nullUnix(o.Expiration),
	)
	if err != nil {
		return false, classify("insert occurrence", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, classify("insert occurrence: rows affected", err)
	}
	return n > 0, nil
}

// LatestOccurrence returns the occurrence of title with the greatest
// expected time, or nil if the chore has none.
func (s *Store) LatestOccurrence(ctx context.Context, title string) (*chore.Occurrence, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+occurrenceColumns+`
		FROM chores
		WHERE title = ?
		ORDER BY expected_completion_time DESC
		LIMIT 1
	`, title)

	o, err := scanOccurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("latest occurrence", err)
	}
	return &o, nil
}

// GetOccurrence returns the occurrence with the given key.
// Returns chore.ErrNotFound if it does not exist.
func (s *Store) GetOccurrence(ctx context.Context, key chore.Key) (chore.Occurrence, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+occurrenceColumns+`
		FROM chores
		WHERE title = ? AND expected_completion_time = ?
	`, key.Title, toUnix(key.Expected))

	o, err := scanOccurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return chore.Occurrence{}, chore.NotFound(key)
	}
	if err != nil {
		return chore.Occurrence{}, classify("get occurrence", err)
	}
	return o, nil
}

// CompleteOccurrence moves an assigned occurrence to completed.
//
// The update is conditional on the stored status still being assigned. If
// no row changed, the row is read back in the same transaction to report
// chore.ErrNotFound (no such occurrence) or chore.ErrConflict (already
// completed or missed).
func (s *Store) CompleteOccurrence(ctx context.Context, key chore.Key) error {
	return s.transition(ctx, "complete occurrence", key, chore.StatusCompleted)
}

// MarkMissed moves an assigned occurrence to missed. Returns false when
// the row is no longer assigned, which callers treat as a lost race.
func (s *Store) MarkMissed(ctx context.Context, key chore.Key) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE chores
		SET status = 'missed'
		WHERE title = ? AND expected_completion_time = ? AND status = 'assigned'
	`, key.Title, toUnix(key.Expected))
	if err != nil {
		return false, classify("mark missed", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, classify("mark missed: rows affected", err)
	}
	return n > 0, nil
}

func (s *Store) transition(ctx context.Context, op string, key chore.Key, to chore.Status) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op+": begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		UPDATE chores
		SET status = ?
		WHERE title = ? AND expected_completion_time = ? AND status = 'assigned'
	`, to.String(), key.Title, toUnix(key.Expected))
	if err != nil {
		return classify(op, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return classify(op+": rows affected", err)
	}

	if n == 0 {
		var current string
		err := tx.QueryRowContext(ctx, `
			SELECT status FROM chores
			WHERE title = ? AND expected_completion_time = ?
		`, key.Title, toUnix(key.Expected)).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return chore.NotFound(key)
		}
		if err != nil {
			return classify(op+": read current status", err)
		}
		status, err := chore.ParseStatus(current)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return chore.Conflict(key, status)
	}

	if err := tx.Commit(); err != nil {
		return classify(op+": commit", err)
	}
	return nil
}

// ExpiredAssigned returns the keys of assigned occurrences whose
// expiration time is at or before now, oldest first. Occurrences without
// an expiration are never returned.
func (s *Store) ExpiredAssigned(ctx context.Context, now time.Time) ([]chore.Key, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, expected_completion_time
		FROM chores
		WHERE status = 'assigned'
		  AND expiration_time IS NOT NULL
		  AND expiration_time <= ?
		ORDER BY expected_completion_time ASC, title ASC
	`, toUnix(now))
	if err != nil {
		return nil, classify("query expired", err)
	}
	defer rows.Close()

	keys := []chore.Key{}
	for rows.Next() {
		var (
			title    string
			expected int64
		)
		if err := rows.Scan(&title, &expected); err != nil {
			return nil, classify("scan expired", err)
		}
		keys = append(keys, chore.Key{Title: title, Expected: fromUnix(expected)})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate expired", err)
	}
	return keys, nil
}

// ListOccurrences returns every occurrence expected at or after since,
// plus every assigned occurrence regardless of age. Ordered by expected
// time, then title.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ListOccurrences(ctx context.Context, since time.Time) ([]chore.Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+occurrenceColumns+`
		FROM chores
		WHERE expected_completion_time >= ? OR status = 'assigned'
		ORDER BY expected_completion_time ASC, title ASC
	`, toUnix(since))
	if err != nil {
		return nil, classify("query occurrences", err)
	}
	defer rows.Close()

	occurrences := []chore.Occurrence{}
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, classify("scan occurrence", err)
		}
		occurrences = append(occurrences, o)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate occurrences", err)
	}
	return occurrences, nil
}

// CountAssigned returns how many stored-assigned occurrences title has.
func (s *Store) CountAssigned(ctx context.Context, title string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM chores WHERE title = ? AND status = 'assigned'
	`, title).Scan(&n)
	if err != nil {
		return 0, classify("count assigned", err)
	}
	return n, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOccurrence(row scanner) (chore.Occurrence, error) {
	var (
		o                            chore.Occurrence
		status                       string
		expected, createdAt, overdue int64
		expiration                   sql.NullInt64
	)
	if err := row.Scan(&o.Title, &expected, &status, &createdAt, &overdue, &expiration); err != nil {
		return chore.Occurrence{}, err
	}

	parsed, err := chore.ParseStatus(status)
	if err != nil {
		return chore.Occurrence{}, fmt.Errorf("occurrence %s: %w", o.Title, err)
	}

	o.Status = parsed
	o.Expected = fromUnix(expected)
	o.CreatedAt = fromUnix(createdAt)
	o.Overdue = fromUnix(overdue)
	o.Expiration = fromNullUnix(expiration)
	return o, nil
}
