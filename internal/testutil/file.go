package testutil

import (
	"os"
	"sync"
)

// FailingFile wraps an *os.File and injects write, sync and truncate faults.
// It satisfies the WAL's File interface.
type FailingFile struct {
	*os.File

	mu             sync.Mutex
	writes         int
	failAfter      int // -1 means never
	partial        bool
	failSync       bool
	failTruncate   bool
	truncateCalled int
}

// OpenFailingFile opens path for append, creating it if needed.
func OpenFailingFile(path string) (*FailingFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		return nil, err
	}
	return &FailingFile{File: f, failAfter: -1}, nil
}

// FailWritesAfter lets n more writes succeed, then fails every write after.
// With partial set, a failing write first writes half of its bytes.
func (f *FailingFile) FailWritesAfter(n int, partial bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = f.writes + n
	f.partial = partial
}

// Heal disables every injected fault.
func (f *FailingFile) Heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = -1
	f.failSync = false
	f.failTruncate = false
}

// SetFailSync makes Sync fail.
func (f *FailingFile) SetFailSync(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSync = fail
}

// SetFailTruncate makes Truncate fail.
func (f *FailingFile) SetFailTruncate(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failTruncate = fail
}

// TruncateCalls reports how many times Truncate was invoked.
func (f *FailingFile) TruncateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.truncateCalled
}

func (f *FailingFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && f.writes >= f.failAfter {
		f.writes++
		if f.partial && len(p) > 1 {
			n, _ := f.File.Write(p[:len(p)/2])
			return n, ErrInjected
		}
		return 0, ErrInjected
	}
	f.writes++
	return f.File.Write(p)
}

func (f *FailingFile) Sync() error {
	f.mu.Lock()
	fail := f.failSync
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.File.Sync()
}

func (f *FailingFile) Truncate(size int64) error {
	f.mu.Lock()
	f.truncateCalled++
	fail := f.failTruncate
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.File.Truncate(size)
}
