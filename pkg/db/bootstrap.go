package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// First-run defaults
const (
	DefaultProfileName = "default"
	DefaultAPIPort     = 8080
)

// Bootstrap creates the default profile and API address on first run.
// It is a no-op once any profile exists.
func (db *DB) Bootstrap(ctx context.Context) error {
	needs, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check profiles: %w", err)
	}
	if !needs {
		return nil
	}

	return db.Tx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (name, timezone, is_active)
			VALUES (?, ?, 1)
		`, DefaultProfileName, detectTimezone())
		if err != nil {
			return fmt.Errorf("failed to create default profile: %w", err)
		}

		profileID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get profile ID: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO api_servers (profile_id, host, port)
			VALUES (?, '0.0.0.0', ?)
		`, profileID, DefaultAPIPort)
		if err != nil {
			return fmt.Errorf("failed to create default API server: %w", err)
		}
		return nil
	})
}

// detectTimezone attempts to detect the system timezone.
func detectTimezone() string {
	switch runtime.GOOS {
	case "darwin":
		out, err := exec.Command("systemsetup", "-gettimezone").Output()
		if err == nil {
			if _, tz, ok := strings.Cut(string(out), ": "); ok {
				return strings.TrimSpace(tz)
			}
		}
	case "linux":
		out, err := exec.Command("timedatectl", "show", "--property=Timezone", "--value").Output()
		if err == nil && len(out) > 0 {
			return strings.TrimSpace(string(out))
		}
		if data, err := os.ReadFile("/etc/timezone"); err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	if tz := localtimeZone(); tz != "" {
		return tz
	}
	return "UTC"
}

// localtimeZone reads the zone name from the /etc/localtime symlink.
func localtimeZone() string {
	link, err := os.Readlink("/etc/localtime")
	if err != nil {
		return ""
	}
	if _, tz, ok := strings.Cut(link, "zoneinfo/"); ok {
		return tz
	}
	return ""
}

// NeedsBootstrap returns true if the database needs initial setup.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
