package server

import (
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/reaper"
	"github.com/litetable/litetable-scan/internal/tablet"
	"github.com/rs/zerolog/log"
	"net/http"
	"time"
)

type handlers struct {
	registry *iterators.Registry
	tables   tableAdmin
	reaper   compactionQueue
}

type errorResponse struct {
	Error string `json:"error"`
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listIterators(w http.ResponseWriter, _ *http.Request) {
	names := h.registry.Names()
	out := make([]iterators.Descriptor, 0, len(names))
	for _, name := range names {
		d, err := h.registry.Describe(name)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		out = append(out, d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) describeIterator(w http.ResponseWriter, r *http.Request) {
	d, err := h.registry.Describe(chi.URLParam(r, "name"))
	if errors.Is(err, iterators.ErrUnknownOperator) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// validateStack checks a list of iterator settings as a scan would, without touching data.
func (h *handlers) validateStack(w http.ResponseWriter, r *http.Request) {
	var settings []iterators.Setting
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	err := h.registry.ValidateStack(settings, &iterators.Environment{Scope: iterators.ScanScope})
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, validateResponse{Valid: true})
}

func (h *handlers) listTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tables.Tables())
}

type putResponse struct {
	Written int `json:"written"`
}

// putEntries stores a JSON list of entries in a table.
func (h *handlers) putEntries(w http.ResponseWriter, r *http.Request) {
	var entries []data.Entry
	if err := json.NewDecoder(r.Body).Decode(&entries); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	err := h.tables.Put(chi.URLParam(r, "name"), entries...)
	switch {
	case errors.Is(err, tablet.ErrTableNotFound), errors.Is(err, tablet.ErrTableDeleted):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, putResponse{Written: len(entries)})
	}
}

func (h *handlers) compactTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	known := false
	for _, t := range h.tables.Tables() {
		if t.Name == name {
			known = true
			break
		}
	}
	if !known {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "table not found: " + name})
		return
	}

	err := h.reaper.Reap(name)
	switch {
	case errors.Is(err, reaper.ErrQueueFull):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("took", time.Since(start)).
			Msg("admin request")
	})
}
