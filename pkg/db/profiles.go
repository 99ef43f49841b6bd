package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile holds the persistent settings of one installation.
type Profile struct {
	ID           int64
	Name         string
	Timezone     string
	StorageDir   string // Directory of the device document, empty for the default
	OutputDir    string // Directory generated YAML is written to, empty for the default
	CommandTable string // Path of the transceiver's raw command table, optional
	MQTTBroker   string // Broker URL for event publishing, empty disables it
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileStore provides profile CRUD operations.
type ProfileStore interface {
	Get(ctx context.Context, id int64) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	GetActive(ctx context.Context) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	SetActive(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Profiles returns a ProfileStore for this database.
func (db *DB) Profiles() ProfileStore {
	return &profileStore{db: db}
}

type profileStore struct {
	db *DB
}

const profileColumns = `id, name, timezone, storage_dir, output_dir, command_table, mqtt_broker, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*Profile, error) {
	p := &Profile{}
	var createdAt, updatedAt string
	err := row.Scan(&p.ID, &p.Name, &p.Timezone, &p.StorageDir, &p.OutputDir,
		&p.CommandTable, &p.MQTTBroker, &p.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	p.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	return p, nil
}

func (s *profileStore) getOne(ctx context.Context, where string, args ...any) (*Profile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where, args...)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *profileStore) Get(ctx context.Context, id int64) (*Profile, error) {
	return s.getOne(ctx, `id = ?`, id)
}

func (s *profileStore) GetByName(ctx context.Context, name string) (*Profile, error) {
	return s.getOne(ctx, `name = ?`, name)
}

func (s *profileStore) GetActive(ctx context.Context) (*Profile, error) {
	return s.getOne(ctx, `is_active = 1 LIMIT 1`)
}

func (s *profileStore) List(ctx context.Context) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *profileStore) Create(ctx context.Context, p *Profile) error {
	if p.Timezone == "" {
		p.Timezone = "UTC"
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (name, timezone, storage_dir, output_dir, command_table, mqtt_broker, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.Name, p.Timezone, p.StorageDir, p.OutputDir, p.CommandTable, p.MQTTBroker, p.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (s *profileStore) Update(ctx context.Context, p *Profile) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET name = ?, timezone = ?, storage_dir = ?, output_dir = ?,
			command_table = ?, mqtt_broker = ?, is_active = ?, updated_at = datetime('now')
		WHERE id = ?
	`, p.Name, p.Timezone, p.StorageDir, p.OutputDir, p.CommandTable, p.MQTTBroker, p.IsActive, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return requireRow(result, ErrProfileNotFound)
}

func (s *profileStore) SetActive(ctx context.Context, id int64) error {
	return s.db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 0`); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `UPDATE profiles SET is_active = 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return requireRow(result, ErrProfileNotFound)
	})
}

func (s *profileStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, ErrProfileNotFound)
}

// requireRow returns notFound when result touched no rows.
func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
