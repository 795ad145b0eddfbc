package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/repo"
	"github.com/pkordes/itinerary-export/internal/service"
)

// mockTripStore is a hand-written test double for repo.TripStore.
// Each method is a function field; set only the ones your test needs.
type mockTripStore struct {
	load func(ctx context.Context) (domain.Snapshot, error)
	save func(ctx context.Context, data []byte, parentSHA string) (domain.SaveResult, error)
}

func (m *mockTripStore) Load(ctx context.Context) (domain.Snapshot, error) {
	return m.load(ctx)
}
func (m *mockTripStore) Save(ctx context.Context, data []byte, parentSHA string) (domain.SaveResult, error) {
	return m.save(ctx, data, parentSHA)
}

// compile-time check: mockTripStore must satisfy repo.TripStore.
var _ repo.TripStore = (*mockTripStore)(nil)

func notFound(context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{}, domain.ErrNotFound
}

// ---- Save ------------------------------------------------------------------

func TestTripService_Save_CreatesWhenMissing(t *testing.T) {
	var gotData []byte
	var gotParent = "unset"
	store := &mockTripStore{
		load: notFound,
		save: func(_ context.Context, data []byte, parent string) (domain.SaveResult, error) {
			gotData, gotParent = data, parent
			return domain.SaveResult{SHA: domain.BlobSHA(data), Created: true}, nil
		},
	}
	svc := service.NewTripService(store, nil)

	res, err := svc.Save(context.Background(), json.RawMessage(`[{"name":"Lisbon"}]`))

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "", gotParent)
	assert.Equal(t, "[\n  {\n    \"name\": \"Lisbon\"\n  }\n]", string(gotData))
}

func TestTripService_Save_UpdatesWithCurrentSHA(t *testing.T) {
	var gotParent string
	store := &mockTripStore{
		load: func(context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{SHA: "abc123", Data: []byte(`[]`)}, nil
		},
		save: func(_ context.Context, _ []byte, parent string) (domain.SaveResult, error) {
			gotParent = parent
			return domain.SaveResult{SHA: "def456", CommitSHA: "c0ffee"}, nil
		},
	}
	svc := service.NewTripService(store, nil)

	res, err := svc.Save(context.Background(), json.RawMessage(`[]`))

	require.NoError(t, err)
	assert.Equal(t, "abc123", gotParent)
	assert.Equal(t, "def456", res.SHA)
	assert.False(t, res.Created)
}

func TestTripService_Save_MissingData(t *testing.T) {
	svc := service.NewTripService(&mockTripStore{}, nil)

	for _, in := range []string{"", "  ", "null"} {
		_, err := svc.Save(context.Background(), json.RawMessage(in))
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", in)
	}
}

func TestTripService_Save_InvalidJSON(t *testing.T) {
	svc := service.NewTripService(&mockTripStore{}, nil)

	_, err := svc.Save(context.Background(), json.RawMessage(`{"name":`))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Save_ReadFailureIsUpstream(t *testing.T) {
	boom := errors.New("connection reset")
	store := &mockTripStore{
		load: func(context.Context) (domain.Snapshot, error) { return domain.Snapshot{}, boom },
	}
	svc := service.NewTripService(store, nil)

	_, err := svc.Save(context.Background(), json.RawMessage(`[]`))

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, boom)
}

func TestTripService_Save_ConflictIsUpstreamAndNotRetried(t *testing.T) {
	calls := 0
	store := &mockTripStore{
		load: func(context.Context) (domain.Snapshot, error) { return domain.Snapshot{SHA: "old"}, nil },
		save: func(context.Context, []byte, string) (domain.SaveResult, error) {
			calls++
			return domain.SaveResult{}, domain.ErrConflict
		},
	}
	svc := service.NewTripService(store, nil)

	_, err := svc.Save(context.Background(), json.RawMessage(`[]`))

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, calls)
}

func TestTripService_Save_NotConfigured(t *testing.T) {
	store := &mockTripStore{
		load: func(context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{}, domain.ErrNotConfigured
		},
	}
	svc := service.NewTripService(store, nil)

	_, err := svc.Save(context.Background(), json.RawMessage(`[]`))

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.NotErrorIs(t, err, domain.ErrUpstream)
}

// ---- List / Get ------------------------------------------------------------

func storedTrips(data string) *mockTripStore {
	return &mockTripStore{
		load: func(context.Context) (domain.Snapshot, error) {
			return domain.Snapshot{SHA: "s1", Data: []byte(data)}, nil
		},
	}
}

const twoTrips = `[
	{"id":"a1","name":"Lisbon","startDate":"2024-07-14","endDate":"2024-07-16"},
	{"id":"b2","name":"Porto","startDate":"2024-08-01","endDate":"2024-08-02"}
]`

func TestTripService_List(t *testing.T) {
	svc := service.NewTripService(storedTrips(twoTrips), nil)

	trips, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "Porto", trips[1].Name)
	assert.NotNil(t, trips[0].Arrivals, "collections are normalized")
}

func TestTripService_List_EmptyStore(t *testing.T) {
	svc := service.NewTripService(&mockTripStore{load: notFound}, nil)

	trips, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, trips)
}

func TestTripService_List_CorruptDocument(t *testing.T) {
	svc := service.NewTripService(storedTrips(`"not trips"`), nil)

	_, err := svc.List(context.Background())

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestTripService_Get(t *testing.T) {
	svc := service.NewTripService(storedTrips(twoTrips), nil)
	ctx := context.Background()

	byID, err := svc.Get(ctx, "b2")
	require.NoError(t, err)
	assert.Equal(t, "Porto", byID.Name)

	byName, err := svc.Get(ctx, "lisbon")
	require.NoError(t, err)
	assert.Equal(t, "a1", byName.ID)

	_, err = svc.Get(ctx, "Faro")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
