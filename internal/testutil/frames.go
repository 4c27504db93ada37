package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"
)

const (
	opcodePut    byte = 1
	opcodeDelete byte = 2
)

// EncodePutFrame builds a put frame byte by byte, independent of the record codec.
func EncodePutFrame(key, value []byte) []byte {
	buf := make([]byte, 9, 9+len(key)+len(value))
	buf[0] = opcodePut
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(key)))   //nolint:gosec
	binary.LittleEndian.PutUint32(buf[5:9], uint32(len(value))) //nolint:gosec
	buf = append(buf, key...)
	return append(buf, value...)
}

// EncodeDeleteFrame builds a delete frame: value_len is zero and no value bytes follow.
func EncodeDeleteFrame(key []byte) []byte {
	buf := make([]byte, 9, 9+len(key))
	buf[0] = opcodeDelete
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(key))) //nolint:gosec
	return append(buf, key...)
}

// Sequence accumulates WAL frames for a test file.
type Sequence struct {
	buf    []byte
	frames []int
}

// NewSequence creates a new empty sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Put appends a put frame.
func (s *Sequence) Put(key, value string) *Sequence {
	return s.Raw(EncodePutFrame([]byte(key), []byte(value)))
}

// Delete appends a delete frame.
func (s *Sequence) Delete(key string) *Sequence {
	return s.Raw(EncodeDeleteFrame([]byte(key)))
}

// Raw appends arbitrary bytes as one frame, e.g. a torn or corrupt tail.
func (s *Sequence) Raw(b []byte) *Sequence {
	s.frames = append(s.frames, len(s.buf))
	s.buf = append(s.buf, b...)
	return s
}

// Bytes returns the concatenated frames.
func (s *Sequence) Bytes() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

// Len returns the byte length of the sequence.
func (s *Sequence) Len() int64 {
	return int64(len(s.buf))
}

// FrameOffset returns the byte offset frame i starts at.
func (s *Sequence) FrameOffset(i int) int64 {
	return int64(s.frames[i])
}

// FrameEnd returns the byte offset just past frame i.
func (s *Sequence) FrameEnd(i int) int64 {
	if i+1 < len(s.frames) {
		return int64(s.frames[i+1])
	}
	return int64(len(s.buf))
}

// Frames returns the number of frames in the sequence.
func (s *Sequence) Frames() int {
	return len(s.frames)
}

// WriteTo writes the sequence as the whole content of path.
func (s *Sequence) WriteTo(t *testing.T, path string) {
	t.Helper()
	WriteWAL(t, path, s.buf)
}

// WriteWAL replaces path with data, creating parent directories as needed.
func WriteWAL(t *testing.T, path string, data []byte) {
	t.Helper()
	tst.RequireNoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	tst.RequireNoError(t, os.WriteFile(path, data, 0o600))
}

// AppendRaw appends data to the end of path.
func AppendRaw(t *testing.T, path string, data []byte) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec
	tst.RequireNoError(t, err)
	_, err = f.Write(data)
	tst.RequireNoError(t, err)
	tst.RequireNoError(t, f.Close())
}

// ReadWAL returns the bytes currently in path.
func ReadWAL(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec
	tst.RequireNoError(t, err)
	return data
}

// SetupDataDir returns a fresh data directory and the WAL path inside it.
func SetupDataDir(t *testing.T) (dir string, walPath string) {
	t.Helper()
	dir = filepath.Join(t.TempDir(), "data")
	return dir, filepath.Join(dir, "wal.log")
}
