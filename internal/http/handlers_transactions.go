package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"yesan/internal/core"
	"yesan/internal/services"
)

type transactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleAddTransaction(w, r)
	case http.MethodDelete:
		s.handleRemoveTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST, DELETE")
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter services.TransactionFilter

	if raw := r.URL.Query().Get("month"); raw != "" {
		key, err := core.ParseMonthKey(raw)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Month = key
	}
	filter.Item = r.URL.Query().Get("item")

	txs, err := s.ledger.Transactions(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: txs})
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed transaction body", core.ErrInvalidArgument))
		return
	}

	saved, err := s.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateReport(r.Context(), saved.Date)

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleRemoveTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, fmt.Errorf("%w: missing id parameter", core.ErrInvalidArgument))
		return
	}

	removed, ok, err := s.ledger.RemoveTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ok {
		s.invalidateReport(r.Context(), removed.Date)
	}

	// Removing an unknown id is a no-op, not an error.
	w.WriteHeader(http.StatusNoContent)
}
