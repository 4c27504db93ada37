package txn

import (
	"errors"
	"fmt"

	"github.com/julianstephens/walkv/internal/walkv/errorutil"
	"github.com/julianstephens/walkv/internal/walkv/kv"
)

var (
	// Returned by every method once a transaction has committed or rolled back.
	ErrTxnClosed = errors.New("txn: transaction closed")

	// Returned when an operation cannot be encoded as a log record.
	ErrInvalidOp = errors.New("txn: invalid operation")

	// Wraps every backend failure during commit.
	ErrCommitFailed = errors.New("txn: commit failed")
)

// OpError reports an operation rejected at staging time.
type OpError struct {
	Err    error
	OpKind kv.OpKind
	KeyLen int
	Cause  error
}

func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Err.Error(), e.OpKind, e.Cause)
	}
	return fmt.Sprintf("%s %s", e.Err.Error(), e.OpKind)
}

func (e *OpError) Unwrap() error   { return e.Err }
func (e *OpError) CauseErr() error { return e.Cause }

// CommitError describes a commit that stopped part-way.
//
// Operations [0, Applied) are in the WAL and the index; the operation at
// OpIndex failed and everything after it was abandoned.
type CommitError struct {
	Err error

	Applied int
	Total   int

	OpIndex int
	OpKind  kv.OpKind
	KeyLen  int

	Cause error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf(
		"txn commit failed %s (%s): applied %d of %d: %v",
		errorutil.AtOp(e.OpIndex).FormatCoordinates(), e.OpKind, e.Applied, e.Total, e.Cause,
	)
}

// Unwrap exposes both the stable sentinel and the backend cause, so callers
// can test errors.Is against ErrCommitFailed and the store's own sentinels.
func (e *CommitError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func (e *CommitError) CauseErr() error { return e.Cause }

// Partial reports whether some but not all operations were applied.
func (e *CommitError) Partial() bool {
	return e.Applied > 0 && e.Applied < e.Total
}

func wrapCommitErr(ops []kv.Op, applied int, cause error) error {
	ce := &CommitError{
		Err:     ErrCommitFailed,
		Applied: applied,
		Total:   len(ops),
		OpIndex: applied,
		Cause:   cause,
	}
	if applied < len(ops) {
		ce.OpKind = ops[applied].Kind
		ce.KeyLen = len(ops[applied].Key)
	}
	return ce
}
