// Package api exposes the computed signals over HTTP. It only reads market
// state; all computation happens per request on the latest snapshot and
// nothing is cached.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"signal_go/internal/domain"
	"signal_go/internal/infra"
	"signal_go/internal/market"
	"signal_go/internal/signal"
)

// Server is the query surface over one market.State.
type Server struct {
	state      *market.State
	thresholds signal.Thresholds
	coins      []string // configured coin set, for health/status reporting
	metrics    *infra.Metrics
}

// NewServer creates the query server. metrics may be nil, which disables
// the /metrics route.
func NewServer(state *market.State, thresholds signal.Thresholds, coins []string, metrics *infra.Metrics) *Server {
	return &Server{state: state, thresholds: thresholds, coins: coins, metrics: metrics}
}

// Router builds the chi routing tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/v1/state", s.handleState)
	r.Get("/v1/signal/{coin}", s.handleSignal)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("query server listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.Health{
		OK:          true,
		WSConnected: s.state.Connected(),
		Coins:       s.coins,
		UptimeSec:   s.state.UptimeSec(),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := domain.SystemState{
		TimestampMs: time.Now().UnixMilli(),
		Coins:       s.coins,
		LastTradeMs: make(map[string]int64, len(s.coins)),
		LastBookMs:  make(map[string]int64, len(s.coins)),
	}
	for _, coin := range s.coins {
		if cs, ok := s.state.Lookup(coin); ok {
			snap := cs.Snapshot()
			resp.LastTradeMs[coin] = snap.LastTradeMs
			resp.LastBookMs[coin] = snap.LastBookMs
		} else {
			resp.LastTradeMs[coin] = 0
			resp.LastBookMs[coin] = 0
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	coin := strings.ToUpper(chi.URLParam(r, "coin"))
	cs, ok := s.state.Lookup(coin)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown coin "+coin)
		return
	}

	feat := signal.Summarize(cs.Snapshot())
	regime := s.thresholds.Classify(
		feat[signal.FeatRetStd],
		feat[signal.FeatSpreadMean],
		feat[signal.FeatTradeImbStd],
		feat[signal.FeatMomRaw],
	)
	sigs := domain.Signals{
		Momentum:  feat[signal.FeatMom01],
		Liquidity: feat[signal.FeatLiq01],
		Risk:      feat[signal.FeatRisk01],
	}

	writeJSON(w, http.StatusOK, domain.SignalEnvelope{
		TimestampMs: time.Now().UnixMilli(),
		Coin:        coin,
		Regime:      regime,
		Signals:     sigs,
		Edge:        signal.ScoreEdge(regime, sigs),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// requestLogger logs each request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
