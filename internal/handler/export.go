package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/service"
)

// Export formats accepted in ?format=.
const (
	formatPDF  = "pdf"
	formatHTML = "html"
	formatPlan = "plan"
)

// exportParams are the query parameters shared by both export routes.
type exportParams struct {
	format     string
	backend    string
	strategy   *string
	maxDays    *int
	pageHeight *float64
}

// parseExportParams reads ?format, ?backend, ?strategy, ?maxDays and
// ?pageHeight. Malformed numbers and unknown formats are validation errors.
func parseExportParams(r *http.Request) (exportParams, error) {
	q := r.URL.Query()
	p := exportParams{format: q.Get("format"), backend: q.Get("backend")}

	switch p.format {
	case "":
		p.format = formatPDF
	case formatPDF, formatHTML, formatPlan:
	default:
		return p, fmt.Errorf("%w: unknown format %q", domain.ErrValidation, p.format)
	}

	if v := q.Get("strategy"); v != "" {
		p.strategy = &v
	}
	if v := q.Get("maxDays"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: maxDays must be a positive integer", domain.ErrValidation)
		}
		p.maxDays = &n
	}
	if v := q.Get("pageHeight"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil || h < 0 {
			return p, fmt.Errorf("%w: pageHeight must be a non-negative number", domain.ErrValidation)
		}
		p.pageHeight = &h
	}
	return p, nil
}

// ExportStoredTrip handles GET /trips/{id}/export. The trip is looked up in
// the stored collection by id, then by name.
func (s *Server) ExportStoredTrip(w http.ResponseWriter, r *http.Request) {
	trip, err := s.trips.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeExport(w, r, trip)
}

// ExportTrip handles POST /export with a trip document as the body.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "could not read request body")
		return
	}

	trip, err := domain.DecodeTrip(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", unwrapMessage(err, domain.ErrValidation))
		return
	}
	s.writeExport(w, r, trip)
}

// writeExport plans or renders trip according to the query parameters and
// writes the result.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, trip domain.Trip) {
	params, err := parseExportParams(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	policy, err := domain.NewLayoutPolicy(s.export.DefaultPolicy(), params.strategy, params.maxDays, params.pageHeight)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if params.format == formatPlan {
		plan, err := s.export.Plan(trip, policy)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, plan)
		return
	}

	backend := params.backend
	if params.format == formatHTML {
		backend = formatHTML
	}

	ctx := r.Context()
	if s.opts.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RenderTimeout)
		defer cancel()
	}

	res, err := s.export.Export(ctx, trip, service.ExportOptions{Backend: backend, Policy: policy})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	disposition := "attachment"
	if res.Ext() == formatHTML {
		disposition = "inline"
	}
	w.Header().Set("Content-Type", res.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": service.Filename(trip, res.Ext()),
	}))
	w.Header().Set("Content-Length", strconv.Itoa(res.Len()))
	w.Header().Set("X-Export-Id", uuid.NewString())
	w.Header().Set("X-Export-Pages", strconv.Itoa(res.Pages()))
	w.WriteHeader(http.StatusOK)
	_, _ = res.WriteTo(w)
}
