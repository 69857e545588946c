package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	key, err := s.monthParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if cached, ok := s.reportCache.Get(string(key)); ok {
		slog.DebugContext(r.Context(), "Report cache hit", "month", string(key))
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := s.ledger.Report(r.Context(), key)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.reportCache.Set(string(key), report)
	writeJSON(w, http.StatusOK, report)
}
