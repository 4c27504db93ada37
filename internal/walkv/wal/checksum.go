package wal

import (
	"os"

	"github.com/julianstephens/go-utils/checksum"
)

// Checksum returns the CRC32-C of the log's current bytes.
// The frame format carries no checksum of its own; this fingerprints the
// whole file so two copies of a log can be compared.
func (l *Log) Checksum() (uint32, error) {
	if l.closed {
		return 0, wrapLogErr("checksum", ErrClosed, l.path, 0, nil)
	}
	if err := l.writer.Flush(); err != nil {
		return 0, wrapLogErr("flush", ErrFlushFailed, l.path, l.size, err)
	}
	data, err := os.ReadFile(l.path) //nolint:gosec
	if err != nil {
		return 0, wrapLogErr("checksum", ErrReplayFailed, l.path, 0, err)
	}
	return checksum.CRC32C(data), nil
}
