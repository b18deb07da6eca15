package http

import (
	"net/http"
	"strings"
	"time"

	"billkeep/internal/core"
	"billkeep/internal/store"
)

// monthFromQuery returns the requested month key, defaulting to the current
// month on the server's local clock. Writes 400 and returns false on an
// invalid key.
func monthFromQuery(w http.ResponseWriter, raw string) (string, bool) {
	monthKey := strings.TrimSpace(raw)
	if monthKey == "" {
		return core.MonthKey(time.Now()), true
	}
	if err := core.ValidateMonthKey(monthKey); err != nil {
		writeDomainError(w, err)
		return "", false
	}
	return monthKey, true
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	monthKey, ok := monthFromQuery(w, r.URL.Query().Get("month"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.store.ProjectMonth(monthKey))
}

type createBillRequest struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	DueDay *int        `json:"dueDay"`
	Amount *core.Money `json:"amount"`
	Notes  string      `json:"notes"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "missing name", "")
		return
	}
	if req.DueDay == nil {
		writeError(w, http.StatusBadRequest, "missing dueDay", "")
		return
	}

	bill := core.Bill{
		ID:     strings.TrimSpace(req.ID),
		Name:   strings.TrimSpace(req.Name),
		DueDay: *req.DueDay,
		Notes:  req.Notes,
	}
	if req.Amount != nil {
		bill.Amount = *req.Amount
	}

	created, err := s.store.AddBill(bill)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type updateBillRequest struct {
	Name   *string     `json:"name"`
	DueDay *int        `json:"dueDay"`
	Amount *core.Money `json:"amount"`
	Notes  *string     `json:"notes"`
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req updateBillRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := s.store.UpdateBill(r.PathValue("id"), store.BillPatch{
		Name:   req.Name,
		DueDay: req.DueDay,
		Amount: req.Amount,
		Notes:  req.Notes,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveBill(r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setPaidRequest struct {
	IsPaid *bool  `json:"isPaid"`
	Month  string `json:"month"`
}

func (s *Server) handleSetPaid(w http.ResponseWriter, r *http.Request) {
	var req setPaidRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.IsPaid == nil {
		writeError(w, http.StatusBadRequest, "missing isPaid", "")
		return
	}
	monthKey, ok := monthFromQuery(w, req.Month)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := s.store.SetPaid(id, monthKey, *req.IsPaid); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"month":  monthKey,
		"isPaid": *req.IsPaid,
	})
}
