package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/go-utils/cliutil"
	"github.com/julianstephens/go-utils/generic"
	"github.com/julianstephens/go-utils/helpers"
	"github.com/julianstephens/go-utils/jsonutil"

	"github.com/julianstephens/walkv/internal/walkv/config"
	"github.com/julianstephens/walkv/internal/walkv/store"
	"github.com/julianstephens/walkv/internal/walkv/wal"
)

// InitCmd writes a config file holding the defaults.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config file"`
}

func (c *InitCmd) Run(g *Globals) error {
	path := g.ConfigPath
	if helpers.Exists(path) && !c.Force {
		cliutil.PrintError(fmt.Sprintf("config %s already exists (use --force to overwrite)", path))
		return os.ErrExist
	}

	cfg := config.Default()
	if g.DataDir != "" {
		cfg.DataDir = g.DataDir
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	if err := helpers.AtomicFileWrite(path, data); err != nil {
		return err
	}
	fmt.Fprintf(g.out(), "wrote %s\n", path) // nolint:errcheck
	return nil
}

// GetCmd retrieves a value by key.
type GetCmd struct {
	Key string `arg:"" help:"Key to retrieve"`
}

func (c *GetCmd) Run(g *Globals) error {
	return g.withStore(nil, func(s *store.Store) error {
		v, ok, err := s.Get([]byte(c.Key))
		if err != nil {
			return err
		}
		if !ok {
			cliutil.PrintError(fmt.Sprintf("key %q not found", c.Key))
			return ErrKeyNotFound
		}
		fmt.Fprintln(g.out(), string(v)) // nolint:errcheck
		return nil
	})
}

// PutCmd stores a key-value pair.
type PutCmd struct {
	Key   string `arg:"" help:"Key to store"`
	Value string `arg:"" help:"Value to store"`
}

func (c *PutCmd) Run(g *Globals) error {
	return g.withStore(nil, func(s *store.Store) error {
		return s.Put([]byte(c.Key), []byte(c.Value))
	})
}

// DelCmd deletes a key.
type DelCmd struct {
	Key string `arg:"" help:"Key to delete"`
}

func (c *DelCmd) Run(g *Globals) error {
	return g.withStore(nil, func(s *store.Store) error {
		return s.Delete([]byte(c.Key))
	})
}

// ScanCmd lists keys in order.
type ScanCmd struct {
	Prefix   string `arg:"" optional:"" help:"Only list keys starting with this prefix"`
	Limit    int    `help:"Stop after this many keys (0 for no limit)" default:"0"`
	KeysOnly bool   `help:"Print keys without values" name:"keys-only"`
}

func (c *ScanCmd) Run(g *Globals) error {
	return g.withStore(nil, func(s *store.Store) error {
		n := 0
		return s.Scan([]byte(c.Prefix), func(k, v []byte) bool {
			if c.KeysOnly {
				fmt.Fprintln(g.out(), string(k)) // nolint:errcheck
			} else {
				fmt.Fprintf(g.out(), "%s=%s\n", k, v) // nolint:errcheck
			}
			n++
			return c.Limit <= 0 || n < c.Limit
		})
	})
}

// StatsCmd displays store statistics.
type StatsCmd struct {
	JSON     bool `help:"Print statistics as JSON" name:"json"`
	Checksum bool `help:"Include the CRC32-C of wal.log"`
}

type statsView struct {
	DataDir      string `json:"data_dir"`
	WALPath      string `json:"wal_path"`
	Keys         int    `json:"keys"`
	LiveBytes    int64  `json:"live_bytes"`
	WALBytes     int64  `json:"wal_bytes"`
	SyncWrites   bool   `json:"sync_writes"`
	Records      int    `json:"replayed_records"`
	Tail         string `json:"tail"`
	IgnoredBytes int64  `json:"ignored_bytes"`
	WALCRC32C    string `json:"wal_crc32c,omitempty"`
}

func newStatsView(st store.Stats) statsView {
	return statsView{
		DataDir:      st.DataDir,
		WALPath:      st.WALPath,
		Keys:         st.Keys,
		LiveBytes:    st.LiveBytes,
		WALBytes:     st.WALBytes,
		SyncWrites:   st.SyncWrites,
		Records:      st.Replay.Records,
		Tail:         st.Replay.Tail.String(),
		IgnoredBytes: st.Replay.IgnoredBytes(),
	}
}

func (c *StatsCmd) Run(g *Globals) error {
	return g.withStore(nil, func(s *store.Store) error {
		st, err := s.Stats()
		if err != nil {
			return err
		}
		view := newStatsView(st)
		if c.Checksum {
			sum, err := s.Checksum()
			if err != nil {
				return err
			}
			view.WALCRC32C = fmt.Sprintf("%08x", sum)
		}
		if c.JSON {
			data, err := jsonutil.Marshal(view)
			if err != nil {
				return err
			}
			fmt.Fprintln(g.out(), string(data)) // nolint:errcheck
			return nil
		}

		w := g.out()
		fmt.Fprintf(w, "data dir:    %s\n", view.DataDir)                              // nolint:errcheck
		fmt.Fprintf(w, "wal:         %s (%d bytes)\n", view.WALPath, view.WALBytes)    // nolint:errcheck
		fmt.Fprintf(w, "keys:        %d (%d live bytes)\n", view.Keys, view.LiveBytes) // nolint:errcheck
		fmt.Fprintf(w, "sync writes: %s\n", generic.If(view.SyncWrites, "on", "off"))  // nolint:errcheck
		fmt.Fprintf(w, "replayed:    %d records, tail %s\n", view.Records, view.Tail)  // nolint:errcheck
		if view.WALCRC32C != "" {
			fmt.Fprintf(w, "crc32c:      %s\n", view.WALCRC32C) // nolint:errcheck
		}
		if view.IgnoredBytes > 0 {
			fmt.Fprintf(w, "ignored:     %d trailing bytes (run repair to drop them)\n", view.IgnoredBytes) // nolint:errcheck
		}
		return nil
	})
}

// RepairCmd drops a torn or corrupt WAL tail so appends resume on a record boundary.
type RepairCmd struct{}

func (c *RepairCmd) Run(g *Globals) error {
	return g.withStore(func(cfg *config.Config) { cfg.TruncateTornTail = true }, func(s *store.Store) error {
		st, err := s.Stats()
		if err != nil {
			return err
		}
		if st.Replay.Tail == wal.TailClean {
			fmt.Fprintln(g.out(), "wal is clean") // nolint:errcheck
			return nil
		}
		fmt.Fprintf( // nolint:errcheck
			g.out(),
			"dropped %d bytes of %s tail at offset %d\n",
			st.Replay.IgnoredBytes(), st.Replay.Tail, st.Replay.ValidOffset,
		)
		return nil
	})
}
