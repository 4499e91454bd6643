// Package httpapi is the stateless HTTP surface (C10): a single quoting
// endpoint plus health and metrics, grounded on the teacher's stdlib-mux
// server idiom (internal/metrics/metrics.go) rather than a web framework,
// since the entire service is one route.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pal9000i/arb-bot/internal/errs"
	"github.com/pal9000i/arb-bot/internal/metrics"
	"github.com/pal9000i/arb-bot/internal/orchestrator"
)

const (
	minTradeSizeEth = 0.0
	maxTradeSizeEth = 10_000.0
)

// Evaluator is the subset of *orchestrator.Orchestrator this package calls,
// kept as an interface so handler tests can fake it.
type Evaluator interface {
	Evaluate(ctx context.Context, tradeSizeEth float64) (*orchestrator.Report, error)
}

// Server wires one Evaluator into an HTTP mux.
type Server struct {
	eval Evaluator
	log  *zap.Logger
}

// New builds the HTTP server's mux-facing wrapper.
func New(eval Evaluator, log *zap.Logger) *Server {
	return &Server{eval: eval, log: log}
}

// Mux builds the service's route table. /metrics serves the default
// Prometheus registry, the same one internal/metrics/vars.go registers its
// collectors against, so this one process exposes metrics even when the
// teacher's standalone metrics.Serve listener is disabled.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/arbitrage-opportunity", s.handleArbitrageOpportunity)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func parseTradeSizeEth(raw string) (float64, error) {
	if raw == "" {
		return 0, errs.New(errs.InputInvalid, "trade_size_eth is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.Wrap(errs.InputInvalid, "trade_size_eth must be a number", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errs.New(errs.InputInvalid, "trade_size_eth must be finite")
	}
	if v < minTradeSizeEth {
		return 0, errs.New(errs.InputInvalid, "trade_size_eth must be non-negative")
	}
	if v > maxTradeSizeEth {
		v = maxTradeSizeEth
	}
	return v, nil
}

func (s *Server) handleArbitrageOpportunity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var outcome errs.Kind
	defer func() {
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(string(outcome)).Inc()
	}()

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sizeEth, err := parseTradeSizeEth(r.URL.Query().Get("trade_size_eth"))
	if err != nil {
		outcome = errs.KindOf(err)
		s.writeError(w, err)
		return
	}

	report, err := s.eval.Evaluate(r.Context(), sizeEth)
	if err != nil {
		outcome = errs.KindOf(err)
		if outcome == errs.DeadlineExceeded {
			metrics.DeadlineExceededTotal.Inc()
		}
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toResponseDTO(report))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errs.HTTPStatus(err)
	s.log.Warn("request failed", zap.Error(err), zap.Int("status", status), zap.String("kind", string(errs.KindOf(err))))

	var tagged *errs.Error
	message := err.Error()
	if errors.As(err, &tagged) {
		message = tagged.Message
	}

	s.writeJSON(w, status, errorDTO{Error: message, Kind: string(errs.KindOf(err))})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("encode response", zap.Error(err))
	}
}
