// Package server exposes the dashboard over HTTP as JSON endpoints.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"solana-wallet-pnl/internal/dashboard"
	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/wallet"
)

// Server serves the dashboard API.
type Server struct {
	service *dashboard.Service
	logger  *log.Logger
	http    *http.Server
}

// New creates a Server listening on addr.
func New(addr string, service *dashboard.Service, logger *log.Logger) *Server {
	s := &Server{service: service, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/portfolio/{wallet}", s.handlePortfolio)
		r.Get("/pnl/{wallet}", s.handlePnL)
		r.Get("/history/{wallet}", s.handleHistory)
		r.Get("/compare", s.handleCompare)
	})

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
	}
	return s
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Printf("[server] listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.walletParam(w, r)
	if !ok {
		return
	}

	p, err := s.service.LoadPortfolio(r.Context(), addr)
	if err != nil {
		s.logger.Printf("[server] portfolio %s: %v", wallet.Short(addr), err)
		writeError(w, http.StatusBadGateway, "portfolio unavailable")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePnL(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.walletParam(w, r)
	if !ok {
		return
	}

	p, err := s.service.LoadPortfolio(r.Context(), addr)
	if err != nil {
		s.logger.Printf("[server] pnl %s: %v", wallet.Short(addr), err)
		writeError(w, http.StatusBadGateway, "portfolio unavailable")
		return
	}

	report, err := s.service.LoadPnL(r.Context(), addr, p.Tokens)
	if err != nil {
		s.logger.Printf("[server] pnl %s: %v", wallet.Short(addr), err)
		writeError(w, http.StatusBadGateway, "pnl unavailable")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.walletParam(w, r)
	if !ok {
		return
	}

	points, err := s.service.History(r.Context(), addr)
	if err != nil {
		s.logger.Printf("[server] history %s: %v", wallet.Short(addr), err)
		writeError(w, http.StatusBadGateway, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	other := r.URL.Query().Get("other")
	if wallet.Validate(base) != nil || wallet.Validate(other) != nil {
		writeError(w, http.StatusBadRequest, "base and other must be valid wallet addresses")
		return
	}

	result, err := s.service.Compare(r.Context(), base, other)
	if err != nil {
		s.logger.Printf("[server] compare: %v", err)
		writeError(w, http.StatusBadGateway, "comparison unavailable")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// walletParam extracts and validates the wallet path parameter.
func (s *Server) walletParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	addr := chi.URLParam(r, "wallet")
	if err := wallet.Validate(addr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return "", false
	}
	return addr, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
