package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"billkeep/internal/chat"
	"billkeep/internal/core"
)

type chatRequest struct {
	Message string `json:"message"`
	Month   string `json:"month"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "missing message", "")
		return
	}
	monthKey, ok := monthFromQuery(w, req.Month)
	if !ok {
		return
	}

	if !s.chat.Configured() {
		// Still a well-formed reply payload, not a hard failure.
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"reply": chat.UnavailableReply})
		return
	}

	projected := s.store.ProjectMonth(monthKey)
	grounding := chat.BuildGrounding(monthKey, projected, core.Sum(projected))

	reply, err := s.chat.Complete(r.Context(), grounding, req.Message)
	if err != nil {
		var upstream *chat.UpstreamError
		if errors.As(err, &upstream) {
			status := upstream.Status
			if status < 400 {
				status = http.StatusBadGateway
			}
			writeError(w, status, "chat upstream error", upstream.Message)
			return
		}
		slog.ErrorContext(r.Context(), "Chat relay failed", "error", err)
		writeError(w, http.StatusBadGateway, "chat upstream error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
