package wal

import (
	"bufio"
	"io"
	"os"

	"github.com/julianstephens/go-utils/generic"

	"github.com/julianstephens/walkv/internal/walkv/kv"
	"github.com/julianstephens/walkv/internal/walkv/record"
)

// Replay reads the log from the start through an independent read handle and
// applies every whole record to dst in file order (put overwrites, delete removes).
//
// Replay stops at the end of the file or at the first frame that cannot be
// fully decoded. A torn or corrupt tail is not an error: it is reported via
// ReplayResult.Tail and TailErr and logged as a warning. Only I/O failures
// are returned as errors.
func (l *Log) Replay(dst Applier) (*ReplayResult, error) {
	if l.closed {
		return nil, wrapLogErr("replay", ErrClosed, l.path, 0, nil)
	}
	if err := l.writer.Flush(); err != nil {
		return nil, wrapLogErr("flush", ErrFlushFailed, l.path, l.size, err)
	}

	f, err := os.Open(l.path) //nolint:gosec
	if err != nil {
		return nil, wrapLogErr("replay", ErrReplayFailed, l.path, 0, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, wrapLogErr("replay", ErrReplayFailed, l.path, 0, err)
	}

	l.logger.Info("starting WAL replay", "path", l.path, "size", info.Size())

	res, err := ReplayFrom(bufio.NewReaderSize(f, logWriterBufferSize), dst)
	if err != nil {
		return res, wrapLogErr("replay", ErrReplayFailed, l.path, res.ValidOffset, err)
	}
	res.FileSize = info.Size()

	if res.Tail != TailClean {
		l.logger.Warn(
			"WAL replay stopped before end of file",
			"path", l.path,
			"tail", res.Tail.String(),
			"valid_offset", res.ValidOffset,
			"ignored_bytes", res.IgnoredBytes(),
			"reason", generic.If(res.TailErr != nil, errString(res.TailErr), "unknown"),
		)
	}

	l.logger.Info(
		"WAL replay complete",
		"records", res.Records,
		"puts", res.Puts,
		"deletes", res.Deletes,
		"valid_offset", res.ValidOffset,
		"tail", res.Tail.String(),
	)
	return res, nil
}

// ReplayFrom decodes records from r and applies them to dst.
// The returned result is non-nil even when an error is returned.
func ReplayFrom(r io.Reader, dst Applier) (*ReplayResult, error) {
	res := &ReplayResult{Tail: TailClean}
	dec := record.NewDecoder(r)

	for {
		rec, status, err := dec.Next()
		switch status {
		case record.StatusDecoded:
			apply(dst, rec)
			res.Records++
			if rec.Op == kv.OpPut {
				res.Puts++
			} else {
				res.Deletes++
			}
			res.ValidOffset = dec.ValidOffset()
			continue
		case record.StatusEndOfStream:
			res.FileSize = dec.Offset()
			return res, nil
		case record.StatusTruncated:
			res.Tail = TailTruncated
		case record.StatusCorrupt:
			res.Tail = TailCorrupt
		default:
			return res, err
		}
		res.TailErr = err
		res.FileSize = dec.Offset()
		return res, nil
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
