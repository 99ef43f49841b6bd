package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("learn session not found")

// Learn session outcomes
const (
	OutcomeCaptured = "captured"
	OutcomeTimeout  = "timeout"
	OutcomeError    = "error"
)

// LearnSession records one learn attempt.
type LearnSession struct {
	ID              string    `json:"id"`
	ProfileID       int64     `json:"profile_id"`
	DeviceID        string    `json:"device_id"`
	Command         string    `json:"command"`
	Kind            string    `json:"kind"`
	Outcome         string    `json:"outcome"`
	FrequencyMHz    float64   `json:"frequency_mhz,omitempty"`
	Polls           int       `json:"polls"`
	TransientErrors int       `json:"transient_errors"`
	Error           string    `json:"error,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	DurationMS      int64     `json:"duration_ms"`
}

// SessionStore records and lists learn sessions.
type SessionStore interface {
	Record(ctx context.Context, s *LearnSession) error
	Get(ctx context.Context, id string) (*LearnSession, error)
	List(ctx context.Context, profileID int64, deviceID string, limit int) ([]*LearnSession, error)
}

// Sessions returns a SessionStore for this database.
func (db *DB) Sessions() SessionStore {
	return &sessionStore{db: db}
}

type sessionStore struct {
	db *DB
}

// sessionTime keeps started_at lexically sortable.
const sessionTime = "2006-01-02T15:04:05.000000000Z"

const sessionColumns = `id, profile_id, device_id, command, kind, outcome, frequency_mhz, polls, transient_errors, error, started_at, duration_ms`

func scanSession(row rowScanner) (*LearnSession, error) {
	s := &LearnSession{}
	var startedAt string
	err := row.Scan(&s.ID, &s.ProfileID, &s.DeviceID, &s.Command, &s.Kind, &s.Outcome,
		&s.FrequencyMHz, &s.Polls, &s.TransientErrors, &s.Error, &startedAt, &s.DurationMS)
	if err != nil {
		return nil, err
	}
	s.StartedAt, _ = time.Parse(sessionTime, startedAt)
	return s, nil
}

// Record stores s, assigning a new id when s.ID is empty.
func (st *sessionStore) Record(ctx context.Context, s *LearnSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	_, err := st.db.ExecContext(ctx, `
		INSERT INTO learn_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.ProfileID, s.DeviceID, s.Command, s.Kind, s.Outcome, s.FrequencyMHz,
		s.Polls, s.TransientErrors, s.Error, s.StartedAt.UTC().Format(sessionTime), s.DurationMS)
	if err != nil {
		return fmt.Errorf("failed to record learn session: %w", err)
	}
	return nil
}

func (st *sessionStore) Get(ctx context.Context, id string) (*LearnSession, error) {
	row := st.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM learn_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// List returns the newest sessions first. An empty deviceID lists every
// device; a non-positive limit means 50.
func (st *sessionStore) List(ctx context.Context, profileID int64, deviceID string, limit int) ([]*LearnSession, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + sessionColumns + ` FROM learn_sessions WHERE profile_id = ?`
	args := []any{profileID}
	if deviceID != "" {
		query += ` AND device_id = ?`
		args = append(args, deviceID)
	}
	query += ` ORDER BY started_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*LearnSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
