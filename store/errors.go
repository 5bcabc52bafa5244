package store

import "errors"

var (
	// ErrNotFound is returned when a credential id is not in the store
	ErrNotFound = errors.New("credential not found")
	// ErrReadOnly is returned by every mutating call on a read-only store
	ErrReadOnly = errors.New("cannot modify credentials in read-only mode")
	// ErrCorruptStore describes a backing file that could not be loaded
	ErrCorruptStore = errors.New("credential store is corrupt")
	// ErrIO is returned when the backing file could not be written
	ErrIO = errors.New("credential store I/O failure")
	// ErrInvalidArgument is returned when a required field is empty
	ErrInvalidArgument = errors.New("invalid credential argument")
)
