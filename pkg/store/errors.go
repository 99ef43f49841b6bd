package store

import "errors"

var (
	// ErrDeviceExists indicates a create used an id that is already stored
	ErrDeviceExists = errors.New("device already exists")

	// ErrDeviceNotFound indicates the device id is not stored
	ErrDeviceNotFound = errors.New("device not found")

	// ErrCommandExists indicates an add used a command name the device already has
	ErrCommandExists = errors.New("command already exists")

	// ErrInvalidID indicates an empty device id or command name
	ErrInvalidID = errors.New("invalid identifier")
)
