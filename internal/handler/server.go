// Package handler implements the HTTP API of the itinerary exporter.
// All handlers are methods on Server. They are split into files by resource
// (health.go, trips.go, export.go) but share the same Server struct so they
// can reach its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/middleware"
	"github.com/pkordes/itinerary-export/internal/render"
	"github.com/pkordes/itinerary-export/internal/service"
)

// TripServicer defines the trip collection operations the handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without a backing store.
type TripServicer interface {
	Save(ctx context.Context, data json.RawMessage) (domain.SaveResult, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Get(ctx context.Context, idOrName string) (domain.Trip, error)
}

// ExportServicer defines the export operations the handlers depend on.
type ExportServicer interface {
	DefaultPolicy() domain.LayoutPolicy
	Plan(trip domain.Trip, policy domain.LayoutPolicy) (domain.PagePlan, error)
	Export(ctx context.Context, trip domain.Trip, opts service.ExportOptions) (*render.Result, error)
}

// Options configures the router built by Server.Routes.
type Options struct {
	// CORSOrigins are the origins allowed to call the read and export routes.
	// The persistence route accepts any origin.
	CORSOrigins []string

	// RenderTimeout bounds a single export. Zero means no limit beyond the
	// request context.
	RenderTimeout time.Duration

	// OpenAPI is served verbatim at /openapi.yaml when non-empty.
	OpenAPI []byte
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips  TripServicer
	export ExportServicer
	opts   Options
	log    *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(trips TripServicer, export ExportServicer, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{trips: trips, export: export, opts: opts, log: log}
}

// Routes returns the API router. Request ID, logging, and panic recovery are
// applied by the caller around it.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.GetHealth)
	if len(s.opts.OpenAPI) > 0 {
		r.Get("/openapi.yaml", s.GetOpenAPI)
	}

	// Exact match, so /trips/data/export still reaches the export route.
	r.With(middleware.NewPermissiveCORSHandler()).HandleFunc("/trips/data", s.tripsData)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSHandler(s.opts.CORSOrigins))
		r.Get("/trips", s.ListTrips)
		r.Get("/trips/{id}/export", s.ExportStoredTrip)
		r.Post("/export", s.ExportTrip)

		// Preflights only reach the CORS middleware through a matching route.
		r.Options("/trips", noContent)
		r.Options("/trips/{id}/export", noContent)
		r.Options("/export", noContent)
	})

	return r
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
