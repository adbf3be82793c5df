package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hakim/scanreports/internal/metrics"
	"github.com/hakim/scanreports/internal/models"
	"github.com/hakim/scanreports/internal/storage"
)

const (
	rootMessage   = "Vulnerability Scanner API is running"
	statusHealthy = "healthy"

	// TotalCountHeader carries the size of the whole collection on list replies
	TotalCountHeader = "X-Total-Count"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: rootMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    statusHealthy,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) error {
	entry, err := s.provider.Latest(r.Context())
	s.recordLookup("latest", err)
	if err != nil {
		return err
	}
	return s.writeEntry(w, r, entry)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) error {
	raw := r.PathValue("report_id")
	id, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		// An integer outside int range cannot name a stored report
		s.recordLookup("get", storage.ErrNotFound)
		return storage.ErrNotFound
	}
	if err != nil {
		return &ValidationError{Param: "report_id", Value: raw}
	}

	entry, err := s.provider.Get(r.Context(), id)
	s.recordLookup("get", err)
	if err != nil {
		return err
	}
	return s.writeEntry(w, r, entry)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) error {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(r, "limit", s.pagination.DefaultLimit)
	if err != nil {
		return err
	}
	skip, limit = s.clampPage(skip, limit)

	entries, total, err := s.provider.List(r.Context(), skip, limit)
	s.recordLookup("list", err)
	if err != nil {
		return err
	}

	reports := make([]models.Report, 0, len(entries))
	for _, e := range entries {
		reports = append(reports, e.Report)
	}

	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	respondJSON(w, http.StatusOK, reports)
	return nil
}

func (s *Server) writeEntry(w http.ResponseWriter, r *http.Request, e storage.Entry) error {
	enc, err := s.cache.encode(e)
	if err != nil {
		return err
	}
	writeReport(w, r, enc)
	return nil
}

// clampPage keeps paging parameters inside the configured bounds:
// negative skip becomes 0, non-positive limit falls back to the default and
// limit is capped at the maximum.
func (s *Server) clampPage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = s.pagination.DefaultLimit
	}
	if limit > s.pagination.MaxLimit {
		limit = s.pagination.MaxLimit
	}
	return skip, limit
}

func (s *Server) recordLookup(operation string, err error) {
	switch {
	case err == nil:
		s.metrics.RecordLookup(operation, metrics.LookupFound)
	case errors.Is(err, storage.ErrNotFound):
		s.metrics.RecordLookup(operation, metrics.LookupNotFound)
	default:
		s.metrics.RecordLookup(operation, metrics.LookupError)
	}
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		// Atoi saturates to the int bounds; clampPage handles the rest
		return v, nil
	}
	if err != nil {
		return 0, &ValidationError{Param: name, Value: raw}
	}
	return v, nil
}
