package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/julianstephens/go-utils/jsonutil"

	"github.com/julianstephens/walkv/internal/walkv/store"
	"github.com/julianstephens/walkv/internal/walkv/txn"
)

// BatchFile is the on-disk form of a batch. YAML and JSON are accepted:
//
//	ops:
//	  - op: put
//	    key: balance:alice
//	    value: "100"
//	  - op: delete
//	    key: balance:carol
type BatchFile struct {
	ReadOnly bool      `yaml:"read_only" json:"read_only"`
	Ops      []BatchOp `yaml:"ops"       json:"ops"`
}

type BatchOp struct {
	Op    string `yaml:"op"    json:"op"`
	Key   string `yaml:"key"   json:"key"`
	Value string `yaml:"value" json:"value,omitempty"`
}

// LoadBatchFile reads path as JSON when it ends in .json and as YAML otherwise.
func LoadBatchFile(path string) (*BatchFile, error) {
	var bf BatchFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := jsonutil.ReadFileStrict(path, &bf); err != nil {
			return nil, fmt.Errorf("read batch %s: %w", path, err)
		}
		return &bf, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	return &bf, nil
}

// Stage adds every op of bf to tx in file order.
func (bf *BatchFile) Stage(tx *txn.Txn) error {
	for i, op := range bf.Ops {
		var err error
		switch strings.ToLower(op.Op) {
		case "put", "set":
			err = tx.Put([]byte(op.Key), []byte(op.Value))
		case "delete", "del":
			err = tx.Delete([]byte(op.Key))
		default:
			err = fmt.Errorf("unknown op %q", op.Op)
		}
		if err != nil {
			return fmt.Errorf("batch op %d: %w", i, err)
		}
	}
	return nil
}

// BatchCmd stages every operation in a file in one transaction and commits it.
type BatchCmd struct {
	File   string `arg:"" type:"existingfile" help:"YAML or JSON file containing batch operations"`
	DryRun bool   `help:"Validate and stage the batch, then roll it back" name:"dry-run"`
}

func (c *BatchCmd) Run(g *Globals) error {
	bf, err := LoadBatchFile(c.File)
	if err != nil {
		return err
	}

	opts := txn.ReadWrite()
	if bf.ReadOnly {
		opts = txn.ReadOnly()
	}

	return g.withStore(nil, func(s *store.Store) error {
		tx := s.BeginTxn(opts)
		defer func() { _ = tx.Rollback() }()

		if err := bf.Stage(tx); err != nil {
			return err
		}
		if c.DryRun {
			fmt.Fprintf(g.out(), "staged %d ops, rolled back\n", tx.Len()) // nolint:errcheck
			return nil
		}

		n := tx.Len()
		if err := tx.Commit(); err != nil {
			return err
		}
		fmt.Fprintf(g.out(), "committed %d ops\n", n) // nolint:errcheck
		return nil
	})
}

// DemoCmd runs a short walkthrough against the data directory.
type DemoCmd struct{}

func (c *DemoCmd) Run(g *Globals) error {
	return g.withStore(nil, func(s *store.Store) error {
		w := g.out()

		if err := s.Put([]byte("users:1"), []byte(`{"name":"Alice"}`)); err != nil {
			return err
		}
		v, _, err := s.Get([]byte("users:1"))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "users:1 = %s\n", v) // nolint:errcheck

		tx := s.BeginTxn(txn.ReadWrite())
		if err := tx.Put([]byte("balance:alice"), []byte("100")); err != nil {
			return err
		}
		if err := tx.Put([]byte("balance:bob"), []byte("50")); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		for _, k := range []string{"balance:alice", "balance:bob"} {
			v, ok, err := s.Get([]byte(k))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("demo: %s missing after commit", k)
			}
			fmt.Fprintf(w, "%s = %s\n", k, v) // nolint:errcheck
		}
		return nil
	})
}
