package wal

import (
	"errors"
	"fmt"
)

var (
	// Programmer / caller error
	ErrInvalidRecord = errors.New("wal: invalid record")

	// I/O layer failures
	ErrOpenFailed   = errors.New("wal: open failed")
	ErrAppendFailed = errors.New("wal: append failed")
	ErrFlushFailed  = errors.New("wal: flush failed")
	ErrSyncFailed   = errors.New("wal: fsync failed")
	ErrReplayFailed = errors.New("wal: replay failed")
	ErrTruncFailed  = errors.New("wal: truncate failed")
	ErrCloseFailed  = errors.New("wal: close failed")

	// Lifecycle errors
	ErrClosed = errors.New("wal: log closed")
	// ErrBroken is returned once a failed append could not be rolled back and the
	// tail of the file is no longer known to end on a record boundary.
	ErrBroken = errors.New("wal: log tail unrecoverable")
)

// LogError wraps log-level failures with context.
// It preserves a stable sentinel in Err so callers can errors.Is against it.
type LogError struct {
	Err error

	Path string

	// Op is a short label for where the error occurred:
	// "open", "append", "flush", "fsync", "replay", "truncate", "close".
	Op string

	// Offset is the file offset the operation started at, when known.
	Offset int64

	Cause error
}

func (e *LogError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Err.Error(), e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *LogError) Unwrap() error {
	return e.Err
}

// CauseErr returns the underlying cause (not used by errors.Is).
func (e *LogError) CauseErr() error { return e.Cause }

func wrapLogErr(op string, sentinel error, path string, offset int64, cause error) error {
	return &LogError{
		Err:    sentinel,
		Path:   path,
		Op:     op,
		Offset: offset,
		Cause:  cause,
	}
}
