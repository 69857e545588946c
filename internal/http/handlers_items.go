package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"yesan/internal/core"
)

type itemsResponse struct {
	Month core.MonthKey     `json:"month"`
	Items []core.BudgetItem `json:"items"`
}

// upsertItemRequest is the POST /items body. The owning month travels in
// the body; the month query parameter is a fallback for clients that
// prefer it there.
type upsertItemRequest struct {
	Month core.MonthKey    `json:"month"`
	ID    string           `json:"id"`
	Top   core.TopCategory `json:"topCategory"`
	Name  string           `json:"name"`
	Plan  int64            `json:"plan"`
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListItems(w, r)
	case http.MethodPost:
		s.handleUpsertItem(w, r)
	case http.MethodDelete:
		s.handleDeleteItem(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	key, err := s.monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := s.ledger.Items(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, itemsResponse{Month: key, Items: items})
}

func (s *Server) handleUpsertItem(w http.ResponseWriter, r *http.Request) {
	var req upsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed item body", core.ErrInvalidArgument))
		return
	}

	var key core.MonthKey
	var err error
	if req.Month != "" {
		key, err = core.ParseMonthKey(string(req.Month))
	} else {
		key, err = s.monthParam(r)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	item := core.BudgetItem{
		ID:   req.ID,
		Top:  req.Top,
		Name: req.Name,
		Plan: req.Plan,
	}

	saved, err := s.ledger.UpsertItem(r.Context(), key, item)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Plans changed, the month's cached report is stale.
	s.reportCache.Delete(string(key))

	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	key, err := s.monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, fmt.Errorf("%w: missing id parameter", core.ErrInvalidArgument))
		return
	}

	if err := s.ledger.DeleteItem(r.Context(), key, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.reportCache.Delete(string(key))

	w.WriteHeader(http.StatusNoContent)
}
