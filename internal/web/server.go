package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Thomas-Amann-IPAustralia/ai-steward-tracker/internal/updatelog"
)

// Server exposes the persisted update logs read-only, for the dashboard
// collaborator. A missing log file is served as an empty list, never a 404.
type Server struct {
	httpServer *http.Server
}

func New(addr string, platformLog, policyLog *updatelog.Log) *Server {
	r := chi.NewRouter()
	r.Get("/healthz", handleHealth)
	r.Get("/api/updates", handleLog(platformLog))
	r.Get("/api/policy-updates", handleLog(policyLog))

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: r},
	}
}

// Handler returns the route table, mainly for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start begins serving HTTP in the background. Call Shutdown to stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("web: failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	go func() {
		log.Printf("Web server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Web server error: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func handleLog(l *updatelog.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		recs := l.Records()
		if recs == nil {
			recs = []updatelog.Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(recs); err != nil {
			log.Printf("Web server encode error: %v", err)
		}
	}
}
