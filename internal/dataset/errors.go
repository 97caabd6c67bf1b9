package dataset

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrSessionNotFound is matched when a session's video or telemetry
	// file does not exist.
	ErrSessionNotFound = errors.New("dataset: session resource not found")

	// ErrMismatchedCount is matched when a session decodes a different
	// number of frames than it has telemetry rows under CountStrict.
	ErrMismatchedCount = errors.New("dataset: frame and label counts differ")
)

// SessionError ties a failure to the session and resource it came from.
type SessionError struct {
	Epoch int
	Op    string // open, decode, transform, read, align
	Path  string
	Err   error
}

func (e *SessionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("epoch %02d: %s: %v", e.Epoch, e.Op, e.Err)
	}
	return fmt.Sprintf("epoch %02d: %s %s: %v", e.Epoch, e.Op, e.Path, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

func openError(epoch int, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("%w: %w", ErrSessionNotFound, err)
	}
	return &SessionError{Epoch: epoch, Op: "open", Path: path, Err: err}
}
