package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/urmzd/remotehub/pkg/device"
)

var ErrTransceiverNotFound = errors.New("transceiver not found")

// Transceiver is a registered IR/RF transceiver.
type Transceiver struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Name      string    `json:"name"`
	Port      string    `json:"port"`     // Serial port path
	Identity  string    `json:"identity"` // Presented during the handshake
	Kind      string    `json:"kind"`
	BaudRate  int       `json:"baud_rate"`
	Entity    string    `json:"entity"` // Platform remote entity, e.g. remote.living_room
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

// Endpoint returns the session endpoint for the transceiver.
func (t *Transceiver) Endpoint() device.Endpoint {
	return device.Endpoint{Host: t.Port, Identity: t.Identity, Kind: t.Kind}
}

// TransceiverStore provides transceiver registry operations.
type TransceiverStore interface {
	Get(ctx context.Context, id int64) (*Transceiver, error)
	GetByEntity(ctx context.Context, profileID int64, entity string) (*Transceiver, error)
	GetDefault(ctx context.Context, profileID int64) (*Transceiver, error)
	List(ctx context.Context, profileID int64) ([]*Transceiver, error)
	Create(ctx context.Context, t *Transceiver) error
	SetDefault(ctx context.Context, profileID, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Transceivers returns a TransceiverStore for this database.
func (db *DB) Transceivers() TransceiverStore {
	return &transceiverStore{db: db}
}

type transceiverStore struct {
	db *DB
}

const transceiverColumns = `id, profile_id, name, port, identity, kind, baud_rate, entity, is_default, created_at`

func scanTransceiver(row rowScanner) (*Transceiver, error) {
	t := &Transceiver{}
	var createdAt string
	err := row.Scan(&t.ID, &t.ProfileID, &t.Name, &t.Port, &t.Identity, &t.Kind,
		&t.BaudRate, &t.Entity, &t.IsDefault, &createdAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return t, nil
}

func (s *transceiverStore) getOne(ctx context.Context, where string, args ...any) (*Transceiver, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transceiverColumns+` FROM transceivers WHERE `+where, args...)
	t, err := scanTransceiver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransceiverNotFound
	}
	return t, err
}

func (s *transceiverStore) Get(ctx context.Context, id int64) (*Transceiver, error) {
	return s.getOne(ctx, `id = ?`, id)
}

// GetByEntity finds the transceiver behind a platform remote entity.
func (s *transceiverStore) GetByEntity(ctx context.Context, profileID int64, entity string) (*Transceiver, error) {
	return s.getOne(ctx, `profile_id = ? AND entity = ? LIMIT 1`, profileID, entity)
}

// GetDefault returns the default transceiver, falling back to the oldest one.
func (s *transceiverStore) GetDefault(ctx context.Context, profileID int64) (*Transceiver, error) {
	return s.getOne(ctx, `profile_id = ? ORDER BY is_default DESC, id ASC LIMIT 1`, profileID)
}

func (s *transceiverStore) List(ctx context.Context, profileID int64) ([]*Transceiver, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transceiverColumns+` FROM transceivers WHERE profile_id = ? ORDER BY name`, profileID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*Transceiver
	for rows.Next() {
		t, err := scanTransceiver(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *transceiverStore) Create(ctx context.Context, t *Transceiver) error {
	if t.Name == "" || t.Port == "" {
		return fmt.Errorf("transceiver name and port are required")
	}
	if t.BaudRate <= 0 {
		t.BaudRate = 115200
	}

	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if t.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE transceivers SET is_default = 0 WHERE profile_id = ?`, t.ProfileID); err != nil {
				return err
			}
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO transceivers (profile_id, name, port, identity, kind, baud_rate, entity, is_default)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ProfileID, t.Name, t.Port, t.Identity, t.Kind, t.BaudRate, t.Entity, t.IsDefault)
		if err != nil {
			return fmt.Errorf("failed to create transceiver: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = id
		t.CreatedAt = time.Now().UTC().Truncate(time.Second)
		return nil
	})
}

func (s *transceiverStore) SetDefault(ctx context.Context, profileID, id int64) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE transceivers SET is_default = 0 WHERE profile_id = ?`, profileID); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`UPDATE transceivers SET is_default = 1 WHERE id = ? AND profile_id = ?`, id, profileID)
		if err != nil {
			return err
		}
		return requireRow(result, ErrTransceiverNotFound)
	})
}

func (s *transceiverStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM transceivers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrTransceiverNotFound)
}
