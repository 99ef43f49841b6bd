package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// busyTimeoutMS bounds how long a writer waits on a lock held by the other
// binary. The REST server and the MCP server open the same file.
const busyTimeoutMS = 5000

// DB wraps the SQLite database holding profiles, transceivers and learn
// session history.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the database at path, creating parent directories.
// An empty path selects remotehub/remotehub.db under the config directory,
// and a leading ~/ is expanded.
func Open(path string) (*DB, error) {
	path, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeoutMS)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the path to the database file.
func (db *DB) Path() string {
	return db.path
}

// Dir returns the directory holding the database file. Storage and output
// directories default to locations under it.
func (db *DB) Dir() string {
	return filepath.Dir(db.path)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// Tx runs fn in a transaction, committing on nil and rolling back otherwise.
func (db *DB) Tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine database path: %w", err)
		}
		return filepath.Join(dir, "remotehub", "remotehub.db"), nil
	}

	// ~user is left alone
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// configDir is $XDG_CONFIG_HOME when set and ~/.config otherwise, on every
// platform, so macOS installs share the Linux layout.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
