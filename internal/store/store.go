// Package store persists ledger snapshots and walk-forward checkpoints
// on disk, keyed by strategy name. Ledger snapshots are gzip-compressed
// JSON; checkpoints are small enough to stay plain.
package store

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"futures-backtest/internal/ledger"
	"futures-backtest/internal/market"
	"futures-backtest/internal/model"
)

// Store reads and writes run state under a base directory.
type Store struct {
	Dir string
}

// New returns a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) ledgerPath(name string) string {
	return filepath.Join(s.Dir, name+".ledger.json.gz")
}

func (s *Store) statePath(name string) string {
	return filepath.Join(s.Dir, name+".state.json")
}

// SaveLedger writes the ledger's ordered snapshot, compressed.
func (s *Store) SaveLedger(name string, l *ledger.Ledger) error {
	f, err := os.Create(s.ledgerPath(name))
	if err != nil {
		return err
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(l.Export()); err != nil {
		zw.Close()
		return fmt.Errorf("encode ledger %q: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}

// LoadLedger rebuilds a persisted ledger, rebinding it to live
// collaborators.
func (s *Store) LoadLedger(name string, pricing market.Pricing, costs market.CostModel, rollover ledger.RolloverDays, log zerolog.Logger) (*ledger.Ledger, error) {
	f, err := os.Open(s.ledgerPath(name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open ledger %q: %w", name, err)
	}
	defer zr.Close()

	var doc ledger.SnapshotDoc
	if err := json.NewDecoder(zr).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ledger %q: %w", name, err)
	}
	return ledger.Restore(doc, pricing, costs, rollover, log)
}

// SaveState writes the walk-forward checkpoint.
func (s *Store) SaveState(name string, st model.WFOState) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state %q: %w", name, err)
	}
	return os.WriteFile(s.statePath(name), raw, 0o644)
}

// LoadState reads the walk-forward checkpoint. A missing file yields an
// empty state: a run that has never checkpointed starts from scratch.
func (s *Store) LoadState(name string) (model.WFOState, error) {
	raw, err := os.ReadFile(s.statePath(name))
	if os.IsNotExist(err) {
		return model.WFOState{}, nil
	}
	if err != nil {
		return model.WFOState{}, err
	}
	var st model.WFOState
	if err := json.Unmarshal(raw, &st); err != nil {
		return model.WFOState{}, fmt.Errorf("decode state %q: %w", name, err)
	}
	return st, nil
}

// HasLedger reports whether a persisted ledger exists for name.
func (s *Store) HasLedger(name string) bool {
	_, err := os.Stat(s.ledgerPath(name))
	return err == nil
}
