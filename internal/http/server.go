// Package http exposes the bill-tracking service over JSON HTTP.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"billkeep/internal/chat"
	"billkeep/internal/services"
	"billkeep/internal/store"
)

type Server struct {
	http.Server
	store         *store.Store
	chat          *chat.Client
	notifier      *services.Notifier
	publicBaseURL string
	rateLimiter   *rateLimiter

	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures the route table and middleware, returning a
// ready-to-run server.
func NewServer(addr string, st *store.Store, chatClient *chat.Client, notifier *services.Notifier, publicBaseURL string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		store:         st,
		chat:          chatClient,
		notifier:      notifier,
		publicBaseURL: publicBaseURL,
		rateLimiter:   newRateLimiter(),
		stopCleanup:   make(chan struct{}),
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("POST /api/bills", s.handleCreateBill)
	mux.HandleFunc("PUT /api/bills/{id}", s.handleUpdateBill)
	mux.HandleFunc("DELETE /api/bills/{id}", s.handleDeleteBill)
	mux.HandleFunc("POST /api/bills/{id}/paid", s.handleSetPaid)

	mux.HandleFunc("POST /api/push/register", s.handleRegisterToken)
	mux.HandleFunc("POST /api/push/unregister", s.handleUnregisterToken)
	mux.HandleFunc("POST /api/push/send-upcoming", s.handleSendUpcoming)

	mux.HandleFunc("POST /api/chat", s.handleChat)

	s.Server = http.Server{
		Addr:    addr,
		Handler: s.withMiddleware(mux),
	}

	go s.startCleanup()
	return s
}

// startCleanup periodically evicts stale rate-limiter entries.
func (s *Server) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.rateLimiter.cleanupStale()
		case <-s.stopCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutine and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status": "ok",
		"docs":   "GET /api/bills?month=YYYY-MM | POST /api/bills | PUT /api/bills/{id} | DELETE /api/bills/{id} | POST /api/bills/{id}/paid | POST /api/push/register | POST /api/push/unregister | POST /api/push/send-upcoming | POST /api/chat",
	}
	if s.publicBaseURL != "" {
		payload["baseUrl"] = s.publicBaseURL
	}
	writeJSON(w, http.StatusOK, payload)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
