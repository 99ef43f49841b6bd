package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

var ErrNoActiveProfile = errors.New("no active profile found")

// Config represents the complete runtime configuration loaded from the database.
type Config struct {
	Profile     *Profile
	APIServer   *APIServer
	Transceiver *Transceiver // Default transceiver, nil when none is registered

	baseDir string
}

// APIAddress returns the API server listen address.
func (c *Config) APIAddress() string {
	if c.APIServer == nil {
		return "0.0.0.0:8080"
	}
	return c.APIServer.Address()
}

// Timezone returns the profile timezone.
func (c *Config) Timezone() string {
	if c.Profile == nil || c.Profile.Timezone == "" {
		return "UTC"
	}
	return c.Profile.Timezone
}

// StorageDir returns the directory holding the device document.
func (c *Config) StorageDir() string {
	if c.Profile != nil && c.Profile.StorageDir != "" {
		return c.Profile.StorageDir
	}
	return filepath.Join(c.baseDir, "data")
}

// OutputDir returns the directory generated YAML is written to.
func (c *Config) OutputDir() string {
	if c.Profile != nil && c.Profile.OutputDir != "" {
		return c.Profile.OutputDir
	}
	return filepath.Join(c.baseDir, "generated")
}

// CommandTablePath returns the raw command table path, or "" if unset.
func (c *Config) CommandTablePath() string {
	if c.Profile == nil {
		return ""
	}
	return c.Profile.CommandTable
}

// MQTTBroker returns the event broker URL, or "" when publishing is off.
func (c *Config) MQTTBroker() string {
	if c.Profile == nil {
		return ""
	}
	return c.Profile.MQTTBroker
}

// ActiveConfig loads the complete configuration for the active profile.
func (db *DB) ActiveConfig(ctx context.Context) (*Config, error) {
	profile, err := db.Profiles().GetActive(ctx)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrNoActiveProfile
		}
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}

	config := &Config{
		Profile: profile,
		baseDir: db.Dir(),
	}

	apiServer, err := db.APIServers().Get(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrAPIServerNotFound) {
		return nil, fmt.Errorf("failed to get API server config: %w", err)
	}
	config.APIServer = apiServer

	transceiver, err := db.Transceivers().GetDefault(ctx, profile.ID)
	if err != nil && !errors.Is(err, ErrTransceiverNotFound) {
		return nil, fmt.Errorf("failed to get default transceiver: %w", err)
	}
	config.Transceiver = transceiver

	return config, nil
}
