// Package store is the embedded key/value store: a WAL for recovery and an
// in-memory index for reads, guarded by one lock.
package store

import (
	"path/filepath"
	"sync"

	"github.com/julianstephens/go-utils/helpers"

	"github.com/julianstephens/walkv/internal/logger"
	"github.com/julianstephens/walkv/internal/walkv"
	"github.com/julianstephens/walkv/internal/walkv/config"
	"github.com/julianstephens/walkv/internal/walkv/index"
	"github.com/julianstephens/walkv/internal/walkv/kv"
	"github.com/julianstephens/walkv/internal/walkv/txn"
	"github.com/julianstephens/walkv/internal/walkv/wal"
)

// Options carry open-time hooks that do not belong in the config file.
type Options struct {
	// OpenFile overrides how the WAL append handle is opened.
	OpenFile func(path string) (wal.File, error)
}

// Store owns the WAL and the index built from it.
//
// Every method takes the store lock for its whole duration, so operations
// are totally ordered and the WAL record order matches that order.
type Store struct {
	mu sync.Mutex

	dir    string
	cfg    config.Config
	log    *wal.Log
	index  *index.Index
	replay wal.ReplayResult
	logger logger.Logger
	closed bool
}

// Stats is a point-in-time summary of a store.
type Stats struct {
	DataDir    string
	WALPath    string
	Keys       int
	LiveBytes  int64
	WALBytes   int64
	SyncWrites bool
	// Replay describes the replay performed when the store was opened.
	Replay wal.ReplayResult
}

// Open opens the store in cfg.DataDir with no logging.
func Open(cfg config.Config) (*Store, error) {
	return OpenWithOptions(cfg, Options{}, logger.NoOpLogger{})
}

// OpenWithOptions ensures the data directory exists, opens or creates
// wal.log inside it and replays it into a fresh index.
// The caller owns the logger. A nil logger discards output.
func OpenWithOptions(cfg config.Config, opts Options, lg logger.Logger) (*Store, error) {
	if lg == nil {
		lg = logger.NoOpLogger{}
	}
	if cfg.DataDir == "" {
		return nil, wrapStoreErr("open", ErrInvalidConfig, "", nil)
	}

	lg.Info("opening store", "data_dir", cfg.DataDir, "sync_writes", cfg.SyncWrites)

	if err := helpers.Ensure(cfg.DataDir, true); err != nil {
		return nil, wrapStoreErr("open", ErrIO, cfg.DataDir, err)
	}

	walPath := filepath.Join(cfg.DataDir, walkv.WALFileName)
	log, err := wal.Open(walPath, wal.LogOpts{SyncWrites: cfg.SyncWrites, OpenFile: opts.OpenFile}, lg)
	if err != nil {
		return nil, wrapWALErr("open", cfg.DataDir, err)
	}

	ix := index.New()
	res, err := log.Replay(ix)
	if err != nil {
		_ = log.Close()
		return nil, wrapWALErr("replay", cfg.DataDir, err)
	}

	if cfg.TruncateTornTail && res.Tail != wal.TailClean {
		if err := log.TruncateTo(res.ValidOffset); err != nil {
			_ = log.Close()
			return nil, wrapWALErr("truncate", cfg.DataDir, err)
		}
		lg.Warn("truncated WAL tail", "path", walPath, "valid_offset", res.ValidOffset, "dropped_bytes", res.IgnoredBytes())
	}

	s := &Store{
		dir:    cfg.DataDir,
		cfg:    cfg,
		log:    log,
		index:  ix,
		replay: *res,
		logger: lg,
	}

	lg.Info("store opened", "data_dir", cfg.DataDir, "keys", ix.Len(), "wal_bytes", log.Size())
	return s, nil
}

// Path returns the data directory.
func (s *Store) Path() string {
	return s.dir
}

// WALPath returns the path of wal.log.
func (s *Store) WALPath() string {
	return s.log.Path()
}

// Put appends a put record, then sets key=value in the index.
// If the append fails the index is not touched.
func (s *Store) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapStoreErr("put", ErrClosed, s.dir, nil)
	}
	return s.applyLocked("put", kv.Put(key, value))
}

// Delete appends a delete record, then removes key from the index.
// Deleting an absent key still writes a record.
func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapStoreErr("delete", ErrClosed, s.dir, nil)
	}
	return s.applyLocked("delete", kv.Delete(key))
}

// Get returns a copy of the value for key. It never reads the WAL.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false, wrapStoreErr("get", ErrClosed, s.dir, nil)
	}
	v, ok := s.index.Get(key)
	return v, ok, nil
}

// BeginTxn returns a transaction that commits into this store.
func (s *Store) BeginTxn(opts txn.Options) *txn.Txn {
	return txn.New(s, opts)
}

// ApplyBatch applies ops in order under a single lock hold, each exactly
// as Put or Delete would. It stops at the first failure and returns the
// number of ops applied before it; those stay applied.
func (s *Store) ApplyBatch(ops []kv.Op) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, wrapStoreErr("commit", ErrClosed, s.dir, nil)
	}
	for i, op := range ops {
		if err := s.applyLocked("commit", op); err != nil {
			return i, err
		}
	}
	return len(ops), nil
}

var _ txn.Backend = (*Store)(nil)

func (s *Store) applyLocked(opName string, op kv.Op) error {
	switch op.Kind {
	case kv.OpPut:
		if _, err := s.log.AppendPut(op.Key, op.Value); err != nil {
			return wrapWALErr(opName, s.dir, err)
		}
		s.index.Put(op.Key, op.Value)
	case kv.OpDelete:
		if _, err := s.log.AppendDelete(op.Key); err != nil {
			return wrapWALErr(opName, s.dir, err)
		}
		s.index.Delete(op.Key)
	default:
		return wrapStoreErr(opName, ErrInvalidRecord, s.dir, nil)
	}
	return nil
}

// Len returns the number of live keys.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, wrapStoreErr("len", ErrClosed, s.dir, nil)
	}
	return s.index.Len(), nil
}

// Scan calls fn for every key with the given prefix in ascending key order.
// The entries are copied under the lock and fn runs after it is released,
// so fn sees one consistent state and may call back into the store.
func (s *Store) Scan(prefix []byte, fn func(key, value []byte) bool) error {
	type entry struct{ k, v []byte }

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return wrapStoreErr("scan", ErrClosed, s.dir, nil)
	}
	var entries []entry
	s.index.Scan(prefix, func(k, v []byte) bool {
		entries = append(entries, entry{k: clone(k), v: clone(v)})
		return true
	})
	s.mu.Unlock()

	for _, e := range entries {
		if !fn(e.k, e.v) {
			break
		}
	}
	return nil
}

// Sync forces appended records to stable storage.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return wrapStoreErr("sync", ErrClosed, s.dir, nil)
	}
	if err := s.log.Sync(); err != nil {
		return wrapWALErr("sync", s.dir, err)
	}
	return nil
}

// Checksum returns the CRC32-C of wal.log.
func (s *Store) Checksum() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, wrapStoreErr("checksum", ErrClosed, s.dir, nil)
	}
	sum, err := s.log.Checksum()
	if err != nil {
		return 0, wrapWALErr("checksum", s.dir, err)
	}
	return sum, nil
}

// Stats returns a summary of the store.
func (s *Store) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Stats{}, wrapStoreErr("stats", ErrClosed, s.dir, nil)
	}
	return Stats{
		DataDir:    s.dir,
		WALPath:    s.log.Path(),
		Keys:       s.index.Len(),
		LiveBytes:  s.index.Bytes(),
		WALBytes:   s.log.Size(),
		SyncWrites: s.cfg.SyncWrites,
		Replay:     s.replay,
	}, nil
}

// Close closes the WAL. Further operations fail with ErrClosed.
// Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.logger.Info("closing store", "data_dir", s.dir)
	if err := s.log.Close(); err != nil {
		return wrapWALErr("close", s.dir, err)
	}
	return nil
}

// IsClosed reports whether Close has been called.
func (s *Store) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func clone(b []byte) []byte {
	return append(make([]byte, 0, len(b)), b...)
}
