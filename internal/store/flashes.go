package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/chores/internal/chore"
)

// Flash is a short-lived notice shown until someone acknowledges it.
type Flash struct {
	ID             int64      `json:"id"`
	Contents       string     `json:"contents"`
	CreatedAt      time.Time  `json:"created_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// CreateFlash appends an unacknowledged flash created at now.
func (s *Store) CreateFlash(ctx context.Context, contents string, now time.Time) (Flash, error) {
	if strings.TrimSpace(contents) == "" {
		return Flash{}, &chore.Error{Code: chore.ErrCodeInvalidDefinition, Field: "contents", Message: "flash contents are empty"}
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO flashes (contents, created_at) VALUES (?, ?)
	`, contents, toUnix(now))
	if err != nil {
		return Flash{}, classify("create flash", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return Flash{}, classify("create flash: last insert id", err)
	}

	return Flash{
		ID:        id,
		Contents:  contents,
		CreatedAt: fromUnix(toUnix(now)),
	}, nil
}

// GetFlash returns the flash with the given id, or chore.ErrNotFound.
func (s *Store) GetFlash(ctx context.Context, id int64) (Flash, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, contents, created_at, acknowledged, acknowledged_at
		FROM flashes
		WHERE id = ?
	`, id)

	f, err := scanFlash(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Flash{}, flashNotFound(id)
	}
	if err != nil {
		return Flash{}, classify("get flash", err)
	}
	return f, nil
}

// ListActiveFlashes returns unacknowledged flashes, most recent first.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListActiveFlashes(ctx context.Context) ([]Flash, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contents, created_at, acknowledged, acknowledged_at
		FROM flashes
		WHERE acknowledged = 0
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, classify("query flashes", err)
	}
	defer rows.Close()

	flashes := []Flash{}
	for rows.Next() {
		f, err := scanFlash(rows)
		if err != nil {
			return nil, classify("scan flash", err)
		}
		flashes = append(flashes, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate flashes", err)
	}
	return flashes, nil
}

// AcknowledgeFlash marks a flash acknowledged at now. Acknowledging an
// already acknowledged flash is a no-op and keeps the first timestamp.
// Returns chore.ErrNotFound for an unknown id.
func (s *Store) AcknowledgeFlash(ctx context.Context, id int64, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("acknowledge flash: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		UPDATE flashes
		SET acknowledged = 1, acknowledged_at = ?
		WHERE id = ? AND acknowledged = 0
	`, toUnix(now), id)
	if err != nil {
		return classify("acknowledge flash", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return classify("acknowledge flash: rows affected", err)
	}

	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM flashes WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return flashNotFound(id)
		}
		if err != nil {
			return classify("acknowledge flash: lookup", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("acknowledge flash: commit", err)
	}
	return nil
}

func flashNotFound(id int64) *chore.Error {
	return &chore.Error{Code: chore.ErrCodeNotFound, Message: fmt.Sprintf("flash %d not found", id)}
}

func scanFlash(row scanner) (Flash, error) {
	var (
		f              Flash
		createdAt      int64
		acknowledged   int
		acknowledgedAt sql.NullInt64
	)
	if err := row.Scan(&f.ID, &f.Contents, &createdAt, &acknowledged, &acknowledgedAt); err != nil {
		return Flash{}, err
	}
	f.CreatedAt = fromUnix(createdAt)
	f.Acknowledged = acknowledged != 0
	f.AcknowledgedAt = fromNullUnix(acknowledgedAt)
	return f, nil
}
