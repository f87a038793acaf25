// Package marketdata provides snapshot providers that assemble the price,
// fundamental and news inputs the analyzers consume.
package marketdata

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	xhttp "EquitySignal/pkg/http"
)

// HTTPConfig holds settings for the REST market data source.
type HTTPConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	IndexSymbol string        `yaml:"index_symbol" default:"SPY"`
	Timeout     time.Duration `yaml:"timeout" default:"15s"`
}

// HTTPProvider fetches snapshots from a Finnhub-compatible REST API. The
// three sub-fetches are independent; fundamentals and news failures degrade
// to empty sections while missing candles fail the snapshot.
type HTTPProvider struct {
	client *xhttp.Client
	cfg    HTTPConfig
}

func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	if cfg.IndexSymbol == "" {
		cfg.IndexSymbol = "SPY"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPProvider{
		client: xhttp.NewClient(xhttp.WithTimeout(timeout)),
		cfg:    cfg,
	}
}

type candleResponse struct {
	Status  string    `json:"s"`
	Times   []int64   `json:"t"`
	Opens   []float64 `json:"o"`
	Highs   []float64 `json:"h"`
	Lows    []float64 `json:"l"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
}

type metricResponse struct {
	Metric map[string]float64 `json:"metric"`
}

type newsEntry struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Datetime int64  `json:"datetime"`
	Source   string `json:"source"`
}

// metricKeys maps upstream metric names onto the ratio keys the fundamental
// analyzer scores. Absent upstream metrics simply stay absent. Operating
// margin stands in for EBITDA margin, the closest percent margin the metric
// endpoint exposes.
var metricKeys = map[string]string{
	"peBasicExclExtraTTM":         "pe",
	"pbAnnual":                    "pb",
	"roeTTM":                      "roe",
	"totalDebt/totalEquityAnnual": "debt_to_equity",
	"revenueGrowthTTMYoy":         "revenue_yoy",
	"epsGrowthTTMYoy":             "earnings_yoy",
	"operatingMarginTTM":          "ebitda_margin",
}

// evToFCFKey is an EV/FCF multiple, not a yield: higher means more
// expensive. It is inverted into a percent yield before storing.
const evToFCFKey = "currentEv/freeCashFlowTTM"

func (p *HTTPProvider) Snapshot(ctx context.Context, symbol string, n int) (*models.MarketSnapshot, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}

	prices, err := p.fetchCandles(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("candles for %s: %w", symbol, err)
	}

	snap := &models.MarketSnapshot{
		Symbol: symbol,
		AsOf:   time.Now().UTC(),
		Prices: prices,
	}

	// degraded sections stay empty rather than failing the snapshot
	if fundamentals, err := p.fetchFundamentals(ctx, symbol); err == nil {
		snap.Fundamentals = fundamentals
	}
	if news, err := p.fetchNews(ctx, symbol); err == nil {
		snap.News = news
	}
	if index, err := p.fetchCandles(ctx, p.cfg.IndexSymbol, n); err == nil {
		snap.IndexPrices = index
	}

	return snap, nil
}

func (p *HTTPProvider) fetchCandles(ctx context.Context, symbol string, n int) ([]models.PriceBar, error) {
	var resp candleResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.BaseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {"D"},
			"count":      {strconv.Itoa(n)},
			"token":      {p.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, fmt.Errorf("candle status %q", resp.Status)
	}
	if len(resp.Closes) == 0 || len(resp.Times) != len(resp.Closes) {
		return nil, fmt.Errorf("malformed candle payload")
	}

	bars := make([]models.PriceBar, 0, len(resp.Times))
	for i := range resp.Times {
		bar := models.PriceBar{
			Time:  time.Unix(resp.Times[i], 0).UTC(),
			Close: resp.Closes[i],
		}
		if i < len(resp.Opens) {
			bar.Open = resp.Opens[i]
		}
		if i < len(resp.Highs) {
			bar.High = resp.Highs[i]
		}
		if i < len(resp.Lows) {
			bar.Low = resp.Lows[i]
		}
		if i < len(resp.Volumes) {
			bar.Volume = resp.Volumes[i]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func (p *HTTPProvider) fetchFundamentals(ctx context.Context, symbol string) (map[string]float64, error) {
	var resp metricResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.BaseURL + "/stock/metric",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"metricType": {"all"},
			"token":      {p.cfg.APIKey},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}

	fundamentals := make(map[string]float64, len(metricKeys)+1)
	for upstream, key := range metricKeys {
		if v, ok := resp.Metric[upstream]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
			fundamentals[key] = v
		}
	}
	// Negative or zero EV/FCF (cash-burning company) carries no usable
	// yield; the analyzer degrades on the absent key.
	if v, ok := resp.Metric[evToFCFKey]; ok && v > 0 && !math.IsInf(v, 0) {
		fundamentals["fcf_yield"] = 100 / v
	}
	return fundamentals, nil
}

func (p *HTTPProvider) fetchNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	now := time.Now().UTC()
	var entries []newsEntry
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.cfg.BaseURL + "/company-news",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"from":   {now.AddDate(0, 0, -14).Format("2006-01-02")},
			"to":     {now.Format("2006-01-02")},
			"token":  {p.cfg.APIKey},
		},
	}, &entries)
	if err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, models.NewsItem{
			Headline: e.Headline,
			Summary:  e.Summary,
			Date:     time.Unix(e.Datetime, 0).UTC(),
			Source:   e.Source,
		})
	}
	return items, nil
}

var _ domsvc.SnapshotProvider = (*HTTPProvider)(nil)
