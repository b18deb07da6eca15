package http

import (
	"net/http"
	"strings"
	"time"

	"billkeep/internal/core"
)

type registerTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

func (s *Server) handleRegisterToken(w http.ResponseWriter, r *http.Request) {
	var req registerTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "missing token", "")
		return
	}

	tok, err := s.store.AddToken(core.PushToken{Token: req.Token, Platform: req.Platform})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "token": tok.Token})
}

type unregisterTokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleUnregisterToken(w http.ResponseWriter, r *http.Request) {
	var req unregisterTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "missing token", "")
		return
	}

	if err := s.store.RemoveToken(req.Token); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type sendUpcomingRequest struct {
	Month string `json:"month"`
}

func (s *Server) handleSendUpcoming(w http.ResponseWriter, r *http.Request) {
	var req sendUpcomingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	monthKey, ok := monthFromQuery(w, req.Month)
	if !ok {
		return
	}

	result, err := s.notifier.SendUpcoming(r.Context(), monthKey, time.Now())
	if err != nil {
		writeError(w, http.StatusBadGateway, "push delivery failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
