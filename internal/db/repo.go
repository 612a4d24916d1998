package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rotisserie/eris"

	"dokter-remaja/internal/dialogue"
	"dokter-remaja/internal/session"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// Repository stores session snapshots in PostgreSQL.  It implements
// session.Store.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// Create inserts a new session.
func (r *Repository) Create(ctx context.Context, s *dialogue.Session) error {
	state, err := json.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "encode session")
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id, phase, state, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5)`,
		s.ID, string(s.Phase), state, s.CreatedAt, s.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return eris.Wrapf(err, "session %s already exists", s.ID)
	}
	if err != nil {
		return eris.Wrap(err, "insert session")
	}
	return nil
}

// Get loads a session snapshot.  Ids that are not UUIDs are reported as not
// found without a query.
func (r *Repository) Get(ctx context.Context, id string) (*dialogue.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, session.ErrNotFound
	}
	var state []byte
	err := r.DB.QueryRowContext(ctx, `SELECT state FROM sessions WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "select session")
	}
	var s dialogue.Session
	if err := json.Unmarshal(state, &s); err != nil {
		return nil, eris.Wrapf(err, "decode session %s", id)
	}
	return &s, nil
}

// Save replaces the stored snapshot.
func (r *Repository) Save(ctx context.Context, s *dialogue.Session) error {
	state, err := json.Marshal(s)
	if err != nil {
		return eris.Wrap(err, "encode session")
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE sessions
         SET phase = $2, state = $3, updated_at = $4
         WHERE id = $1`,
		s.ID, string(s.Phase), state, s.UpdatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "update session")
	}
	return expectRow(res)
}

// Delete removes a session.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return session.ErrNotFound
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "delete session")
	}
	return expectRow(res)
}

// Expired lists sessions last updated before the cutoff.
func (r *Repository) Expired(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM sessions WHERE updated_at < $1`, before)
	if err != nil {
		return nil, eris.Wrap(err, "query expired sessions")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "scan expired session")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate expired sessions")
	}
	return ids, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return session.ErrNotFound
	}
	return nil
}
