// Package service contains the business logic of the itinerary exporter.
// Services validate inputs, enforce business rules, and orchestrate the
// itinerary core, the renderers, and the trip store. No storage or HTTP
// details live here.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/repo"
)

// TripService reads and replaces the persisted trip collection.
type TripService struct {
	store repo.TripStore
	log   *slog.Logger
}

// NewTripService constructs a TripService backed by store.
func NewTripService(store repo.TripStore, log *slog.Logger) *TripService {
	if log == nil {
		log = slog.Default()
	}
	return &TripService{store: store, log: log}
}

// Save replaces the stored collection with data, pretty-printed with two
// space indentation. The current version's SHA is read first and passed as
// the write precondition; a missing document is created. A conflict is not
// retried.
func (s *TripService) Save(ctx context.Context, data json.RawMessage) (domain.SaveResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.SaveResult{}, fmt.Errorf("service.TripService.Save: %w: data is required", domain.ErrValidation)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, trimmed, "", "  "); err != nil {
		return domain.SaveResult{}, fmt.Errorf("service.TripService.Save: %w: %v", domain.ErrValidation, err)
	}

	var parent string
	current, err := s.store.Load(ctx)
	switch {
	case err == nil:
		parent = current.SHA
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.SaveResult{}, storeError("service.TripService.Save: read current", err)
	}

	res, err := s.store.Save(ctx, pretty.Bytes(), parent)
	if err != nil {
		return domain.SaveResult{}, storeError("service.TripService.Save: write", err)
	}

	s.log.InfoContext(ctx, "trips saved", "sha", res.SHA, "commit", res.CommitSHA, "created", res.Created)
	return res, nil
}

// List returns the trips in the latest stored collection. An empty store
// yields an empty slice.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	snap, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Trip{}, nil
		}
		return nil, storeError("service.TripService.List", err)
	}

	trips, err := domain.DecodeCollection(snap.Data)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: stored collection %s: %w: %w", snap.SHA, domain.ErrUpstream, err)
	}
	return trips, nil
}

// Get returns the stored trip whose ID is idOrName, falling back to the
// first trip with that name (case-insensitive).
func (s *TripService) Get(ctx context.Context, idOrName string) (domain.Trip, error) {
	trips, err := s.List(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}

	for _, t := range trips {
		if t.ID != "" && t.ID == idOrName {
			return t, nil
		}
	}
	for _, t := range trips {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(idOrName)) {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("service.TripService.Get: trip %q: %w", idOrName, domain.ErrNotFound)
}

// storeError keeps configuration and input errors as they are and marks
// every other store failure as upstream.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotConfigured) || errors.Is(err, domain.ErrValidation) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
}
