package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/itinerary"
	"github.com/pkordes/itinerary-export/internal/render"
)

// ExportOptions selects the backend and capacity policy for one export.
// Empty fields fall back to the service defaults.
type ExportOptions struct {
	Backend string
	Policy  domain.LayoutPolicy
}

// ExportService turns a trip into a rendered document:
// expand dates, build day view models, plan pages, render.
type ExportService struct {
	builder   *itinerary.Builder
	renderers *render.Registry
	policy    domain.LayoutPolicy
	log       *slog.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. policy is the capacity
// policy used when a request does not supply one.
func NewExportService(b *itinerary.Builder, reg *render.Registry, policy domain.LayoutPolicy, log *slog.Logger) *ExportService {
	if log == nil {
		log = slog.Default()
	}
	return &ExportService{
		builder:   b,
		renderers: reg,
		policy:    policy.Resolved(),
		log:       log,
		now:       time.Now,
	}
}

// DefaultPolicy returns the configured capacity policy.
func (s *ExportService) DefaultPolicy() domain.LayoutPolicy {
	return s.policy
}

// Plan validates trip and partitions its days into pages.
func (s *ExportService) Plan(trip domain.Trip, policy domain.LayoutPolicy) (domain.PagePlan, error) {
	if err := trip.Validate(); err != nil {
		return domain.PagePlan{}, fmt.Errorf("service.ExportService.Plan: %w", err)
	}
	if policy == (domain.LayoutPolicy{}) {
		policy = s.policy
	}

	days, err := s.builder.BuildAll(trip.Normalize())
	if err != nil {
		return domain.PagePlan{}, fmt.Errorf("service.ExportService.Plan: %w", err)
	}
	return itinerary.Plan(days, policy), nil
}

// Export plans trip and renders it with the selected backend.
func (s *ExportService) Export(ctx context.Context, trip domain.Trip, opts ExportOptions) (*render.Result, error) {
	r, err := s.renderers.Get(opts.Backend)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	plan, err := s.Plan(trip, opts.Policy)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	start := s.now()
	res, err := r.Render(ctx, render.Document{Trip: trip.Normalize(), Plan: plan, GeneratedAt: start})
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: render %s: %w", r.Name(), err)
	}

	s.log.InfoContext(ctx, "trip exported",
		"trip", trip.Name,
		"backend", r.Name(),
		"days", plan.DayCount(),
		"pages", len(plan.Pages),
		"bytes", res.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Filename returns the download name for an export of trip,
// e.g. "summer-in-lisbon-itinerary.pdf".
func Filename(trip domain.Trip, ext string) string {
	slug := slugify(trip.Name)
	if slug == "" {
		slug = "trip"
	}
	return slug + "-itinerary." + strings.TrimPrefix(ext, ".")
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
