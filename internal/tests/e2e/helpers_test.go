package e2e_test

import (
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walkv/internal/walkv/config"
	"github.com/julianstephens/walkv/internal/walkv/store"
)

func openAt(t *testing.T, dir string) *store.Store {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = dir
	s, err := store.Open(cfg)
	tst.RequireNoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func get(t *testing.T, s *store.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get([]byte(key))
	tst.RequireNoError(t, err)
	return string(v), ok
}

func dump(t *testing.T, s *store.Store) map[string]string {
	t.Helper()
	out := map[string]string{}
	tst.RequireNoError(t, s.Scan(nil, func(k, v []byte) bool {
		out[string(k)] = string(v)
		return true
	}))
	return out
}
