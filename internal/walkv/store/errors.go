package store

import (
	"errors"
	"fmt"

	"github.com/julianstephens/walkv/internal/walkv/wal"
)

var (
	// ErrIO is the error kind for every filesystem failure: opening the data
	// directory or WAL, replaying it, appending to it or closing it. The
	// mutation that triggered it did not happen.
	ErrIO = errors.New("store: io error")

	ErrClosed        = errors.New("store: closed")
	ErrInvalidConfig = errors.New("store: invalid config")

	// ErrInvalidRecord is returned when a key or value cannot be framed.
	ErrInvalidRecord = errors.New("store: invalid record")
)

// StoreError wraps store-layer failures with a stable sentinel in Err,
// preserving the lower-layer error in Cause.
type StoreError struct {
	Err error

	// Op describes the operation: "open", "replay", "put", "delete", "commit", "close".
	Op string

	// Path is the data directory.
	Path string

	Cause error
}

func (e *StoreError) Error() string {
	msg := e.Err.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) CauseErr() error { return e.Cause }

func wrapStoreErr(op string, sentinel error, path string, cause error) error {
	return &StoreError{
		Err:   sentinel,
		Op:    op,
		Path:  path,
		Cause: cause,
	}
}

// wrapWALErr classifies a WAL failure. Everything except a record that
// could not be encoded is an I/O failure.
func wrapWALErr(op, path string, cause error) error {
	if errors.Is(cause, wal.ErrInvalidRecord) {
		return wrapStoreErr(op, ErrInvalidRecord, path, cause)
	}
	return wrapStoreErr(op, ErrIO, path, cause)
}
