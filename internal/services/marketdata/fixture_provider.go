package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
)

// FixtureProvider serves snapshots from JSON files on disk, one file per
// symbol ({dir}/{SYMBOL}.json holding a MarketSnapshot). It backs demo runs
// and integration tests where no upstream API is reachable.
type FixtureProvider struct {
	dir string
}

func NewFixtureProvider(dir string) *FixtureProvider {
	return &FixtureProvider{dir: dir}
}

func (p *FixtureProvider) Snapshot(_ context.Context, symbol string, n int) (*models.MarketSnapshot, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	path := filepath.Join(p.dir, strings.ToUpper(symbol)+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	var snap models.MarketSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if snap.Symbol == "" {
		snap.Symbol = strings.ToUpper(symbol)
	}

	// honor the requested lookback when the fixture carries more history
	if n > 0 && len(snap.Prices) > n {
		snap.Prices = snap.Prices[len(snap.Prices)-n:]
	}
	if n > 0 && len(snap.IndexPrices) > n {
		snap.IndexPrices = snap.IndexPrices[len(snap.IndexPrices)-n:]
	}

	return &snap, nil
}

var _ domsvc.SnapshotProvider = (*FixtureProvider)(nil)
