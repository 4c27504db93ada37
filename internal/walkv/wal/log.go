package wal

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/julianstephens/go-utils/helpers"

	"github.com/julianstephens/walkv/internal/logger"
	"github.com/julianstephens/walkv/internal/walkv/kv"
	"github.com/julianstephens/walkv/internal/walkv/record"
)

const (
	logWriterBufferSize = 64 << 10 // 64KiB
)

type LogOpts struct {
	// SyncWrites fsyncs the file after every append. Without it an append
	// returns once the bytes have been handed to the OS.
	SyncWrites bool

	// OpenFile opens the append handle. nil means O_CREATE|O_RDWR|O_APPEND on disk.
	OpenFile func(path string) (File, error)
}

// Log is a single append-only WAL file.
//
// Log is not safe for concurrent use; the store serializes every call under
// its own critical section.
type Log struct {
	path string
	opts LogOpts

	file   File
	writer *bufio.Writer
	size   int64

	logger logger.Logger
	closed bool
	broken bool
}

func openForAppend(path string) (File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600) //nolint:gosec
}

// Open opens the log file for append, creating it and its parent directory if absent.
func Open(path string, opts LogOpts, lg logger.Logger) (*Log, error) {
	if lg == nil {
		lg = logger.NoOpLogger{}
	}
	if path == "" {
		return nil, wrapLogErr("open", ErrOpenFailed, path, 0, os.ErrInvalid)
	}

	if err := helpers.Ensure(filepath.Dir(path), true); err != nil {
		return nil, wrapLogErr("ensure_dir", ErrOpenFailed, path, 0, err)
	}

	open := opts.OpenFile
	if open == nil {
		open = openForAppend
	}
	file, err := open(path)
	if err != nil {
		return nil, wrapLogErr("open", ErrOpenFailed, path, 0, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, wrapLogErr("stat", ErrOpenFailed, path, 0, err)
	}

	lg.Debug("wal opened", "path", path, "size", info.Size(), "sync_writes", opts.SyncWrites)

	return &Log{
		path:   path,
		opts:   opts,
		file:   file,
		writer: bufio.NewWriterSize(file, logWriterBufferSize),
		size:   info.Size(),
		logger: lg,
	}, nil
}

// Path returns the path of the log file.
func (l *Log) Path() string {
	return l.path
}

// Size returns the number of bytes in the log, including any unreplayed tail.
func (l *Log) Size() int64 {
	return l.size
}

// AppendPut appends a put record and returns the offset it starts at.
func (l *Log) AppendPut(key, value []byte) (int64, error) {
	return l.Append(record.Put(key, value))
}

// AppendDelete appends a delete record and returns the offset it starts at.
func (l *Log) AppendDelete(key []byte) (int64, error) {
	return l.Append(record.Delete(key))
}

// Append encodes rec, writes it and flushes it to the OS.
// On failure nothing is considered written: the file is truncated back to
// where the record would have started.
func (l *Log) Append(rec record.Record) (offset int64, err error) {
	offset = l.size
	if l.closed {
		return offset, wrapLogErr("append", ErrClosed, l.path, offset, nil)
	}
	if l.broken {
		return offset, wrapLogErr("append", ErrBroken, l.path, offset, nil)
	}

	frame, err := record.Encode(rec)
	if err != nil {
		return offset, wrapLogErr("encode", ErrInvalidRecord, l.path, offset, err)
	}

	if _, err := l.writer.Write(frame); err != nil {
		return offset, l.rollback("append", ErrAppendFailed, offset, err)
	}
	if err := l.writer.Flush(); err != nil {
		return offset, l.rollback("flush", ErrFlushFailed, offset, err)
	}
	if l.opts.SyncWrites {
		if err := l.file.Sync(); err != nil {
			return offset, l.rollback("fsync", ErrSyncFailed, offset, err)
		}
	}

	l.size += int64(len(frame))
	return offset, nil
}

// rollback discards a partially written frame so the file still ends on a
// record boundary. If that fails the log refuses further appends.
func (l *Log) rollback(op string, sentinel error, offset int64, cause error) error {
	l.writer.Reset(l.file)
	if err := l.file.Truncate(offset); err != nil {
		l.broken = true
		l.logger.Error("wal rollback failed", err, "path", l.path, "offset", offset)
	}
	return wrapLogErr(op, sentinel, l.path, offset, cause)
}

// Sync flushes buffered bytes and fsyncs the file.
func (l *Log) Sync() error {
	if l.closed {
		return wrapLogErr("fsync", ErrClosed, l.path, l.size, nil)
	}
	if err := l.writer.Flush(); err != nil {
		return wrapLogErr("flush", ErrFlushFailed, l.path, l.size, err)
	}
	if err := l.file.Sync(); err != nil {
		return wrapLogErr("fsync", ErrSyncFailed, l.path, l.size, err)
	}
	return nil
}

// TruncateTo cuts the file back to offset, discarding everything after it.
// Used to drop a torn tail found by Replay.
func (l *Log) TruncateTo(offset int64) error {
	if l.closed {
		return wrapLogErr("truncate", ErrClosed, l.path, offset, nil)
	}
	if offset < 0 || offset > l.size {
		return wrapLogErr("truncate", ErrTruncFailed, l.path, offset, os.ErrInvalid)
	}
	if err := l.writer.Flush(); err != nil {
		return wrapLogErr("flush", ErrFlushFailed, l.path, offset, err)
	}
	if err := l.file.Truncate(offset); err != nil {
		return wrapLogErr("truncate", ErrTruncFailed, l.path, offset, err)
	}
	l.size = offset
	l.broken = false
	return nil
}

// Close flushes and closes the file. Closing twice is a no-op.
func (l *Log) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	flushErr := l.writer.Flush()
	if err := l.file.Close(); err != nil {
		return wrapLogErr("close", ErrCloseFailed, l.path, l.size, err)
	}
	if flushErr != nil {
		return wrapLogErr("close", ErrFlushFailed, l.path, l.size, flushErr)
	}
	l.logger.Debug("wal closed", "path", l.path, "size", l.size)
	return nil
}

var _ Appender = (*Log)(nil)

// apply folds one replayed record into dst.
func apply(dst Applier, rec record.Record) {
	switch rec.Op {
	case kv.OpPut:
		dst.Put(rec.Key, rec.Value)
	case kv.OpDelete:
		dst.Delete(rec.Key)
	}
}
