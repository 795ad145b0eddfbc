package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// saveTripsRequest is the body of POST /trips/data.
type saveTripsRequest struct {
	Data json.RawMessage `json:"data"`
}

// saveTripsResponse is the 200 body of POST /trips/data.
type saveTripsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	domain.SaveResult
}

// SaveTripsData handles POST /trips/data. It replaces the stored trip
// collection with the request's data field.
func (s *Server) SaveTripsData(w http.ResponseWriter, r *http.Request) {
	var req saveTripsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
		return
	}
	if len(req.Data) == 0 || bytes.Equal(bytes.TrimSpace(req.Data), []byte("null")) {
		writeError(w, http.StatusBadRequest, "missing_data", `request body must contain a "data" field`)
		return
	}

	res, err := s.trips.Save(r.Context(), req.Data)
	if err != nil {
		// Anything the store did wrong is the gateway's problem; a bad
		// payload that slipped past the checks above is still the caller's.
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, "validation_error", unwrapMessage(err, domain.ErrValidation))
			return
		}
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saveTripsResponse{
		Status:     "success",
		Message:    "Trips data updated successfully",
		SaveResult: res,
	})
}

// PreflightTripsData handles an OPTIONS /trips/data that is not a CORS
// preflight. Real preflights are answered by the CORS middleware.
func (s *Server) PreflightTripsData(w http.ResponseWriter, _ *http.Request) {
	noContent(w, nil)
}

// tripsData dispatches every method on /trips/data.
func (s *Server) tripsData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.SaveTripsData(w, r)
	case http.MethodOptions:
		s.PreflightTripsData(w, r)
	default:
		s.tripsDataMethodNotAllowed(w, r)
	}
}

func (s *Server) tripsDataMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "POST, OPTIONS")
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
}

// ListTrips handles GET /trips.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.trips.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}
