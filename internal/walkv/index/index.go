// Package index holds the in-memory key/value view rebuilt from the WAL.
package index

import (
	"bytes"
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"
)

type orderedMap = skipmap.FuncMap[[]byte, []byte]

// Index maps keys to the latest value written for them, ordered by key bytes.
//
// Reads are safe concurrently with each other and with writes. Callers that
// need a write to line up with a WAL append serialize writes themselves.
type Index struct {
	m     *orderedMap
	bytes atomic.Int64
}

// New returns an empty index.
func New() *Index {
	return &Index{
		m: skipmap.NewFunc[[]byte, []byte](func(a, b []byte) bool {
			return bytes.Compare(a, b) < 0
		}),
	}
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}

// Put sets key to value, replacing any previous value. Both are copied.
func (ix *Index) Put(key, value []byte) {
	k, v := clone(key), clone(value)
	if old, ok := ix.m.Load(k); ok {
		ix.bytes.Add(int64(len(v) - len(old)))
	} else {
		ix.bytes.Add(int64(len(k) + len(v)))
	}
	ix.m.Store(k, v)
}

// Delete removes key. Deleting an absent key is a no-op.
func (ix *Index) Delete(key []byte) {
	if old, ok := ix.m.LoadAndDelete(key); ok {
		ix.bytes.Add(-int64(len(key) + len(old)))
	}
}

// Get returns a copy of the value for key. A present empty value is a
// non-nil empty slice.
func (ix *Index) Get(key []byte) ([]byte, bool) {
	v, ok := ix.m.Load(key)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Len returns the number of live keys.
func (ix *Index) Len() int {
	return ix.m.Len()
}

// Bytes returns the summed length of live keys and values.
func (ix *Index) Bytes() int64 {
	return ix.bytes.Load()
}

// Range calls fn for each entry in ascending key order until fn returns false.
// fn must not retain or modify the slices it is given.
func (ix *Index) Range(fn func(key, value []byte) bool) {
	ix.m.Range(fn)
}

// Scan is Range restricted to keys starting with prefix.
func (ix *Index) Scan(prefix []byte, fn func(key, value []byte) bool) {
	ix.Range(func(k, v []byte) bool {
		if !bytes.HasPrefix(k, prefix) {
			// Keys are ordered, so once past the prefix block nothing else matches.
			return bytes.Compare(k, prefix) < 0
		}
		return fn(k, v)
	})
}
