package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquitySignal/internal/analysis"
	"EquitySignal/internal/coordinator"
	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	"EquitySignal/internal/regime"
	"EquitySignal/internal/usecase"
	xhttp "EquitySignal/pkg/http"
	xlogger "EquitySignal/pkg/logger"
)

type staticProvider struct {
	snap *models.MarketSnapshot
}

func (p *staticProvider) Snapshot(_ context.Context, symbol string, _ int) (*models.MarketSnapshot, error) {
	s := *p.snap
	s.Symbol = symbol
	return &s, nil
}

func testSnapshot() *models.MarketSnapshot {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, 120)
	price := 1000.0
	for i := range bars {
		bars[i] = models.PriceBar{Time: start.AddDate(0, 0, i), Close: price, Volume: 1e6}
		price *= 1.001
	}
	return &models.MarketSnapshot{
		Prices:      bars,
		IndexPrices: bars,
		Fundamentals: map[string]float64{
			"pe": 15, "pb": 2, "roe": 18, "debt_to_equity": 0.5,
			"fcf_yield": 0.05, "revenue_yoy": 0.12, "earnings_yoy": 0.15, "ebitda_margin": 0.2,
		},
		News: []models.NewsItem{
			{Headline: "Great outlook", Summary: "Strong growth and excellent momentum", Date: start},
		},
	}
}

func newTestHandler(t *testing.T) *DecisionEchoHandler {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)

	engine := coordinator.NewEngine(l, []domsvc.Analyzer{
		analysis.NewTechnicalAnalyzer(l),
		analysis.NewFundamentalAnalyzer(l),
		analysis.NewSentimentAnalyzer(l),
	})
	uc := usecase.NewDecisionUseCase(
		&staticProvider{snap: testSnapshot()},
		regime.NewDetector(l),
		engine,
		nil, nil, nil, nil, l,
	)
	return NewDecisionEchoHandler(l, uc)
}

func doRequest(h *DecisionEchoHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDecisionEndpoint(t *testing.T) {
	rec := doRequest(newTestHandler(t), "/api/decision?symbol=ACME")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status int             `json:"status"`
		Data   models.Decision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "ACME", resp.Data.Symbol)
	assert.Contains(t, []string{models.ActionBuy, models.ActionSell, models.ActionHold}, resp.Data.Decision)
	assert.Equal(t, models.RegimeBullish, resp.Data.Regime)
	assert.Len(t, resp.Data.Agents, 3)
	assert.NotEmpty(t, resp.Data.Explanation)
}

func TestDecisionEndpointRequiresSymbol(t *testing.T) {
	rec := doRequest(newTestHandler(t), "/api/decision")
	require.Equal(t, http.StatusOK, rec.Code) // envelope carries the real status

	var resp xhttp.APIResponse400Err
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, "ERR_REQUIRED", resp.Data[0].Code)
}

func TestRegimeEndpoint(t *testing.T) {
	rec := doRequest(newTestHandler(t), "/api/regime?symbol=ACME&n=120")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status int               `json:"status"`
		Data   models.RegimeInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.RegimeBullish, resp.Data.Regime)
	assert.NotNil(t, resp.Data.Details)
}
