package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// InvalidFileError reports a document that failed validation during load.
type InvalidFileError struct {
	Path     string
	Problems []string
}

func (e *InvalidFileError) Error() string {
	return fmt.Sprintf("invalid task file %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// PermissionError reports a file that cannot be read or written.
type PermissionError struct {
	Path string
	Op   string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: cannot %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PermissionError) Unwrap() error {
	return e.Err
}

// wrapFSError converts permission failures into *PermissionError and wraps
// everything else with the operation and path.
func wrapFSError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrPermission) {
		return &PermissionError{Path: path, Op: op, Err: err}
	}
	return fmt.Errorf("%s %s: %w", op, path, err)
}
