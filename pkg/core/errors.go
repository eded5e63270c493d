package core

import (
	"errors"

	"qstore/pkg/archive"
)

var (
	// ErrInvalidInput is returned for a path that is neither a regular file
	// nor a directory, or that cannot be handled the way it was classified.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists is returned when a destination exists and force is
	// not set. The destination is left untouched.
	ErrAlreadyExists = errors.New("destination already exists")
	// ErrCorruptContainer is returned when a tree container cannot be parsed
	// or one of its entries fails verification.
	ErrCorruptContainer = archive.ErrCorrupt
	// ErrEntryNotFound is returned when an enumerated entry cannot be
	// fetched from its container.
	ErrEntryNotFound = archive.ErrNotFound
)
