package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/handler"
	"github.com/pkordes/itinerary-export/internal/itinerary"
	"github.com/pkordes/itinerary-export/internal/render"
	"github.com/pkordes/itinerary-export/internal/service"
	"github.com/pkordes/itinerary-export/spec"
)

// mockTripService is a hand-written test double for handler.TripServicer.
// Each method is a function field; set only the ones your test needs.
type mockTripService struct {
	save func(ctx context.Context, data json.RawMessage) (domain.SaveResult, error)
	list func(ctx context.Context) ([]domain.Trip, error)
	get  func(ctx context.Context, idOrName string) (domain.Trip, error)
}

func (m *mockTripService) Save(ctx context.Context, data json.RawMessage) (domain.SaveResult, error) {
	return m.save(ctx, data)
}
func (m *mockTripService) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripService) Get(ctx context.Context, idOrName string) (domain.Trip, error) {
	return m.get(ctx, idOrName)
}

// compile-time check: mockTripService must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripService)(nil)

// compile-time check: the real export service satisfies handler.ExportServicer.
var _ handler.ExportServicer = (*service.ExportService)(nil)

// newRouter wires the handlers to a real export service with the draw and
// html backends, so export tests exercise the whole pipeline.
func newRouter(t *testing.T, trips handler.TripServicer) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	reg, err := render.NewRegistry("draw",
		render.NewDrawRenderer(render.DefaultPageConfig()),
		render.NewHTMLRenderer(),
	)
	require.NoError(t, err)
	export := service.NewExportService(itinerary.NewBuilder(nil), reg, domain.DefaultLayoutPolicy(), logger)

	srv := handler.NewServer(trips, export, handler.Options{
		CORSOrigins: []string{"http://localhost:5173"},
		OpenAPI:     spec.OpenAPI,
	}, logger)
	return srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeError parses an {"error":{...}} body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
