// Package txn stages writes in memory and hands them to the store on commit.
package txn

import (
	"github.com/julianstephens/walkv/internal/walkv/kv"
	"github.com/julianstephens/walkv/internal/walkv/record"
)

// Backend is the committed state a transaction reads through to and commits into.
type Backend interface {
	// Get returns a copy of the committed value for key.
	Get(key []byte) ([]byte, bool, error)

	// ApplyBatch applies ops in order under one critical section, each as a
	// WAL append followed by an index update. It returns how many ops were
	// applied before the first failure.
	ApplyBatch(ops []kv.Op) (applied int, err error)
}

// State is the lifecycle position of a transaction.
type State uint8

const (
	StateOpen State = iota
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

type staged struct {
	value   []byte
	deleted bool
}

// Txn is a staging buffer of puts and deletes with read-your-writes.
//
// Staging touches neither the WAL nor the store lock. Nothing is visible to
// other readers until Commit. A Txn is owned by one goroutine.
type Txn struct {
	backend Backend
	opts    Options
	state   State

	ops     []kv.Op
	overlay map[string]staged
}

// New begins a transaction over backend.
func New(backend Backend, opts Options) *Txn {
	return &Txn{
		backend: backend,
		opts:    opts,
		overlay: make(map[string]staged),
	}
}

// Options returns the options the transaction was begun with.
func (t *Txn) Options() Options { return t.opts }

// State returns the current lifecycle state.
func (t *Txn) State() State { return t.state }

// Len returns the number of staged operations.
func (t *Txn) Len() int { return len(t.ops) }

// Put stages key=value. Key and value are copied.
func (t *Txn) Put(key, value []byte) error {
	return t.stage(kv.Put(clone(key), clone(value)))
}

// Delete stages the removal of key. The key is copied.
func (t *Txn) Delete(key []byte) error {
	return t.stage(kv.Delete(clone(key)))
}

func (t *Txn) stage(op kv.Op) error {
	if t.state != StateOpen {
		return ErrTxnClosed
	}
	if err := record.Validate(record.FromOp(op)); err != nil {
		return &OpError{Err: ErrInvalidOp, OpKind: op.Kind, KeyLen: len(op.Key), Cause: err}
	}

	t.ops = append(t.ops, op)
	if op.Kind == kv.OpDelete {
		t.overlay[string(op.Key)] = staged{deleted: true}
	} else {
		t.overlay[string(op.Key)] = staged{value: op.Value}
	}
	return nil
}

// Get returns the staged value for key if one exists, otherwise the
// committed value. A staged delete hides any committed value.
func (t *Txn) Get(key []byte) ([]byte, bool, error) {
	if t.state != StateOpen {
		return nil, false, ErrTxnClosed
	}
	if s, ok := t.overlay[string(key)]; ok {
		if s.deleted {
			return nil, false, nil
		}
		return clone(s.value), true, nil
	}
	return t.backend.Get(key)
}

// Commit applies every staged operation in staging order and ends the
// transaction, whether or not it succeeds.
//
// Commit is not atomic. On failure the returned *CommitError says how many
// operations were applied; those stay applied.
func (t *Txn) Commit() error {
	if t.state != StateOpen {
		return ErrTxnClosed
	}
	ops := t.ops
	t.finish(StateCommitted)

	if len(ops) == 0 {
		return nil
	}
	applied, err := t.backend.ApplyBatch(ops)
	if err != nil {
		return wrapCommitErr(ops, applied, err)
	}
	return nil
}

// Rollback discards staged operations. The store is not touched.
// Rolling back a finished transaction returns ErrTxnClosed, so
// `defer tx.Rollback()` after a successful Commit is harmless.
func (t *Txn) Rollback() error {
	if t.state != StateOpen {
		return ErrTxnClosed
	}
	t.finish(StateRolledBack)
	return nil
}

func (t *Txn) finish(s State) {
	t.state = s
	t.ops = nil
	t.overlay = nil
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}
