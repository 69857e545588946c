package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"yesan/internal/core"
)

type settingsRequest struct {
	CycleStartDay int `json:"cycleStartDay"`
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.ledger.Settings(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: malformed settings body", core.ErrInvalidArgument))
			return
		}

		settings, err := s.ledger.SetCycleStartDay(r.Context(), req.CycleStartDay)
		if err != nil {
			writeError(w, r, err)
			return
		}

		// The start day shifts every period boundary.
		s.reportCache.Purge()

		writeJSON(w, http.StatusOK, settings)
	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	if err := s.ledger.Reset(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	s.reportCache.Purge()

	w.WriteHeader(http.StatusNoContent)
}
