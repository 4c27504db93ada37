package cli

import (
	"errors"
	"io"
	"os"

	"github.com/julianstephens/walkv/internal/logger"
	"github.com/julianstephens/walkv/internal/walkv/config"
	"github.com/julianstephens/walkv/internal/walkv/store"
)

var (
	// ErrKeyNotFound is returned by get when the key is absent.
	ErrKeyNotFound = errors.New("key not found")
)

// Globals is bound into every command's Run.
type Globals struct {
	// ConfigPath is the YAML config file. A missing file means defaults.
	ConfigPath string
	// DataDir overrides data_dir from the config file when non-empty.
	DataDir string

	Logger logger.Logger
	Out    io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Globals) log() logger.Logger {
	if g.Logger == nil {
		return logger.NoOpLogger{}
	}
	return g.Logger
}

// LoadConfig reads the config file and applies flag overrides.
func (g *Globals) LoadConfig() (config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if g.DataDir != "" {
		cfg.DataDir = g.DataDir
	}
	return cfg, cfg.Validate()
}

// OpenStore opens the configured store. mutate, if set, adjusts the config first.
func (g *Globals) OpenStore(mutate func(*config.Config)) (*store.Store, error) {
	cfg, err := g.LoadConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return store.OpenWithOptions(cfg, store.Options{}, g.log())
}

// withStore opens the store, runs fn and closes the store, returning the
// first error encountered.
func (g *Globals) withStore(mutate func(*config.Config), fn func(*store.Store) error) (err error) {
	s, err := g.OpenStore(mutate)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}
