package wal

import (
	"io"
	"os"
)

// File is the append handle the log writes through.
// *os.File satisfies it.
type File interface {
	io.Writer
	io.Closer
	Sync() error
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
}

// Applier receives replayed mutations in file order.
type Applier interface {
	Put(key, value []byte)
	Delete(key []byte)
}

// Appender is the write side of the log used by the store.
type Appender interface {
	AppendPut(key, value []byte) (offset int64, err error)
	AppendDelete(key []byte) (offset int64, err error)
	Close() error
}

// TailStatus describes how replay ended.
type TailStatus int

const (
	// TailClean means the file ended exactly on a record boundary.
	TailClean TailStatus = iota
	// TailTruncated means the file ended inside a frame; the partial frame was ignored.
	TailTruncated
	// TailCorrupt means a frame with an unknown opcode was found; it and everything after it was ignored.
	TailCorrupt
)

func (ts TailStatus) String() string {
	switch ts {
	case TailClean:
		return "clean"
	case TailTruncated:
		return "truncated"
	case TailCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// ReplayResult summarizes a replay pass.
type ReplayResult struct {
	Records int
	Puts    int
	Deletes int
	// ValidOffset is the byte offset just past the last applied record.
	ValidOffset int64
	// FileSize is the size of the file when replay started.
	FileSize int64
	Tail     TailStatus
	// TailErr describes the ignored tail frame when Tail is not TailClean.
	TailErr error
}

// IgnoredBytes returns the number of trailing bytes replay did not apply.
func (r *ReplayResult) IgnoredBytes() int64 {
	return r.FileSize - r.ValidOffset
}
