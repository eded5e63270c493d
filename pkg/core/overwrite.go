package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// OpenForWrite opens name for writing. Without force an existing file makes
// the open fail with ErrAlreadyExists and nothing is truncated; with force it
// is truncated. Missing parent directories are created and the open is
// retried once.
func OpenForWrite(name string, force bool) (*os.File, error) {
	flag := os.O_WRONLY | os.O_CREATE
	if force {
		flag |= os.O_TRUNC
	} else {
		flag |= os.O_EXCL
	}

	f, err := os.OpenFile(name, flag, 0o644)
	if errors.Is(err, fs.ErrNotExist) {
		if err := EnsureParent(name); err != nil {
			return nil, err
		}
		f, err = os.OpenFile(name, flag, 0o644)
	}
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %w", ErrAlreadyExists, err)
		}
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

// EnsureParent creates every missing ancestor directory of name.
func EnsureParent(name string) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", name, err)
	}
	return nil
}
