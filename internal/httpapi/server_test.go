package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pal9000i/arb-bot/internal/errs"
	"github.com/pal9000i/arb-bot/internal/orchestrator"
)

type fakeEvaluator struct {
	report *orchestrator.Report
	err    error
	gotSize float64
}

func (f *fakeEvaluator) Evaluate(_ context.Context, tradeSizeEth float64) (*orchestrator.Report, error) {
	f.gotSize = tradeSizeEth
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestServer(eval Evaluator) *Server {
	return New(eval, zap.NewNop())
}

func TestHandleArbitrageOpportunitySuccess(t *testing.T) {
	fake := &fakeEvaluator{report: &orchestrator.Report{
		TradeSizeEth:         1.5,
		ReferenceCEXPriceUSD: 3000,
		Summary:              orchestrator.ArbitrageSummary{RecommendedAction: "NO_ARBITRAGE"},
	}}
	s := newTestServer(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity?trade_size_eth=1.5", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1.5, fake.gotSize)

	var body responseDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1.5, body.TradeSizeEth)
	require.Equal(t, "NO_ARBITRAGE", body.ArbitrageSummary.RecommendedAction)
}

func TestHandleArbitrageOpportunityMissingTradeSize(t *testing.T) {
	s := newTestServer(&fakeEvaluator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, string(errs.InputInvalid), body.Kind)
}

func TestHandleArbitrageOpportunityNonNumericTradeSize(t *testing.T) {
	s := newTestServer(&fakeEvaluator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity?trade_size_eth=banana", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleArbitrageOpportunityNegativeTradeSize(t *testing.T) {
	s := newTestServer(&fakeEvaluator{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity?trade_size_eth=-1", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleArbitrageOpportunityClampsAboveMax(t *testing.T) {
	fake := &fakeEvaluator{report: &orchestrator.Report{TradeSizeEth: maxTradeSizeEth}}
	s := newTestServer(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity?trade_size_eth=999999999", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, maxTradeSizeEth, fake.gotSize)
}

func TestHandleArbitrageOpportunityRejectsNonGet(t *testing.T) {
	s := newTestServer(&fakeEvaluator{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/arbitrage-opportunity?trade_size_eth=1", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleArbitrageOpportunityMapsInsufficientLiquidity(t *testing.T) {
	fake := &fakeEvaluator{err: errs.Wrap(errs.InsufficientLiquidity, "insufficient on-chain liquidity for requested size", nil)}
	s := newTestServer(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity?trade_size_eth=1", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body errorDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, string(errs.InsufficientLiquidity), body.Kind)
}

func TestHandleArbitrageOpportunityMapsDeadlineExceeded(t *testing.T) {
	fake := &fakeEvaluator{err: errs.New(errs.DeadlineExceeded, "evaluation deadline exceeded")}
	s := newTestServer(fake)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/arbitrage-opportunity?trade_size_eth=1", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeEvaluator{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	s := newTestServer(&fakeEvaluator{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
