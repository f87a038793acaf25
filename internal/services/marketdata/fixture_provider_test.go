package marketdata

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquitySignal/internal/domain/models"
)

func writeFixture(t *testing.T, dir, symbol string, snap *models.MarketSnapshot) {
	t.Helper()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".json"), raw, 0o644))
}

func sampleSnapshot(bars int) *models.MarketSnapshot {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	prices := make([]models.PriceBar, bars)
	for i := range prices {
		prices[i] = models.PriceBar{Time: start.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 1e5}
	}
	return &models.MarketSnapshot{
		Symbol:       "ACME",
		AsOf:         start.AddDate(0, 0, bars),
		Prices:       prices,
		Fundamentals: map[string]float64{"pe": 15, "pb": 2},
		News:         []models.NewsItem{{Headline: "Solid quarter", Date: start}},
		IndexPrices:  prices,
	}
}

func TestFixtureSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "ACME", sampleSnapshot(100))

	p := NewFixtureProvider(dir)
	snap, err := p.Snapshot(context.Background(), "acme", 250)
	require.NoError(t, err)

	assert.Equal(t, "ACME", snap.Symbol)
	assert.Len(t, snap.Prices, 100)
	assert.Equal(t, 15.0, snap.Fundamentals["pe"])
	require.Len(t, snap.News, 1)
	assert.Equal(t, "Solid quarter", snap.News[0].Headline)
}

func TestFixtureTrimsToRequestedBars(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "ACME", sampleSnapshot(300))

	p := NewFixtureProvider(dir)
	snap, err := p.Snapshot(context.Background(), "ACME", 50)
	require.NoError(t, err)

	assert.Len(t, snap.Prices, 50)
	assert.Len(t, snap.IndexPrices, 50)
	// the most recent bars survive trimming
	assert.Equal(t, 100.0+299, snap.Prices[len(snap.Prices)-1].Close)
}

func TestFixtureMissingSymbol(t *testing.T) {
	p := NewFixtureProvider(t.TempDir())
	_, err := p.Snapshot(context.Background(), "NOPE", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read fixture")
}

func TestFixtureRequiresSymbol(t *testing.T) {
	p := NewFixtureProvider(t.TempDir())
	_, err := p.Snapshot(context.Background(), "", 10)
	assert.EqualError(t, err, "symbol required")
}
