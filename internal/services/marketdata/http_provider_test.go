package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marketDataServer(t *testing.T, candleStatus string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/candle", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("symbol"))
		resp := candleResponse{
			Status:  candleStatus,
			Times:   []int64{1704153600, 1704240000, 1704326400},
			Opens:   []float64{100, 101, 102},
			Highs:   []float64{101, 102, 103},
			Lows:    []float64{99, 100, 101},
			Closes:  []float64{100.5, 101.5, 102.5},
			Volumes: []float64{1e6, 1.1e6, 1.2e6},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/stock/metric", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(metricResponse{Metric: map[string]float64{
			"peBasicExclExtraTTM":       18.2,
			"pbAnnual":                  2.4,
			"operatingMarginTTM":        21.5,
			"currentEv/freeCashFlowTTM": 25,
			"unrelatedMetric":           99,
		}})
	})
	mux.HandleFunc("/company-news", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]newsEntry{
			{Headline: "Earnings beat", Summary: "Strong quarter", Datetime: 1704240000, Source: "wire"},
		})
	})
	return httptest.NewServer(mux)
}

func TestHTTPSnapshotAssemblesSections(t *testing.T) {
	srv := marketDataServer(t, "ok")
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "test"})
	snap, err := p.Snapshot(context.Background(), "ACME", 3)
	require.NoError(t, err)

	assert.Equal(t, "ACME", snap.Symbol)
	require.Len(t, snap.Prices, 3)
	assert.Equal(t, 102.5, snap.Prices[2].Close)
	assert.Equal(t, 1.2e6, snap.Prices[2].Volume)

	assert.Equal(t, 18.2, snap.Fundamentals["pe"])
	assert.Equal(t, 2.4, snap.Fundamentals["pb"])
	assert.Equal(t, 21.5, snap.Fundamentals["ebitda_margin"])
	// EV/FCF 25 is a multiple, inverted into a 4 percent yield
	assert.InDelta(t, 4.0, snap.Fundamentals["fcf_yield"], 1e-9)
	_, hasUnknown := snap.Fundamentals["unrelatedMetric"]
	assert.False(t, hasUnknown)

	require.Len(t, snap.News, 1)
	assert.Equal(t, "Earnings beat", snap.News[0].Headline)

	// index candles come from the same endpoint under the index symbol
	assert.Len(t, snap.IndexPrices, 3)
}

func TestHTTPSnapshotNegativeEVFCFDropsYield(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/candle", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candleResponse{
			Status: "ok",
			Times:  []int64{1704153600},
			Closes: []float64{100.5},
		})
	})
	mux.HandleFunc("/stock/metric", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(metricResponse{Metric: map[string]float64{
			"currentEv/freeCashFlowTTM": -12.5,
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "test"})
	snap, err := p.Snapshot(context.Background(), "ACME", 1)
	require.NoError(t, err)
	_, ok := snap.Fundamentals["fcf_yield"]
	assert.False(t, ok)
}

func TestHTTPSnapshotCandleErrorFails(t *testing.T) {
	srv := marketDataServer(t, "no_data")
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "test"})
	_, err := p.Snapshot(context.Background(), "ACME", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "candle status")
}

func TestHTTPSnapshotDegradedSections(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/stock/candle", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(candleResponse{
			Status: "ok",
			Times:  []int64{1704153600},
			Closes: []float64{100.5},
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream error", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{BaseURL: srv.URL, APIKey: "test"})
	snap, err := p.Snapshot(context.Background(), "ACME", 1)
	require.NoError(t, err)
	assert.Empty(t, snap.Fundamentals)
	assert.Empty(t, snap.News)
}
