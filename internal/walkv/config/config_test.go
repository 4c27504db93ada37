package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tst "github.com/julianstephens/go-utils/tests"

	"github.com/julianstephens/walkv/internal/walkv"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), walkv.DefaultConfigFileName)
	tst.RequireNoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileYieldsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, cfg, Default())

	cfg, err = Load("")
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, cfg, Default())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: /var/lib/walkv
sync_writes: true
log:
  level: debug
  dir: /var/log/walkv
`)

	cfg, err := Load(path)
	tst.RequireNoError(t, err)

	tst.AssertTrue(t, cfg.DataDir == "/var/lib/walkv", fmt.Sprintf("data_dir: %s", cfg.DataDir))
	tst.AssertTrue(t, cfg.SyncWrites, "sync_writes should be set")
	tst.AssertFalse(t, cfg.TruncateTornTail, "truncate_torn_tail keeps default")
	tst.AssertTrue(t, cfg.Log.Level == "debug", fmt.Sprintf("log.level: %s", cfg.Log.Level))
	tst.AssertTrue(t, cfg.Log.Dir == "/var/log/walkv", fmt.Sprintf("log.dir: %s", cfg.Log.Dir))
	tst.AssertTrue(t, cfg.Log.MaxBackups == walkv.DefaultLogMaxBackups, "max_backups keeps default")
	tst.AssertTrue(t, cfg.Log.Stream == walkv.LogStreamStderr, "stream keeps default")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeConfig(t, "data_dir: [unterminated"))
	tst.AssertTrue(t, err != nil, "expected parse error")

	_, err = Load(writeConfig(t, "data_dir: \"\"\n"))
	tst.AssertTrue(t, errors.Is(err, ErrInvalidConfig), fmt.Sprintf("expected ErrInvalidConfig, got %v", err))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "shout" }, false},
		{"bad stream", func(c *Config) { c.Log.Stream = "syslog" }, false},
		{"no stream", func(c *Config) { c.Log.Stream = "" }, true},
		{"negative backups", func(c *Config) { c.Log.MaxBackups = -1 }, false},
		{"file log without size", func(c *Config) { c.Log.Dir = "logs"; c.Log.MaxSizeMB = 0 }, false},
		{"file log", func(c *Config) { c.Log.Dir = "logs" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok {
				tst.RequireNoError(t, err)
			} else {
				tst.AssertTrue(t, errors.Is(err, ErrInvalidConfig), fmt.Sprintf("expected ErrInvalidConfig, got %v", err))
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.SyncWrites = true

	data, err := cfg.Marshal()
	tst.RequireNoError(t, err)

	got, err := Load(writeConfig(t, string(data)))
	tst.RequireNoError(t, err)
	tst.RequireDeepEqual(t, got, cfg)
}
