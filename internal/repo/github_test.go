package repo_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/itinerary-export/internal/domain"
	"github.com/pkordes/itinerary-export/internal/repo"
)

const contentsPath = "/repos/acme/trips/contents/data/trips.json"

// fakeGitHub serves a single file through the subset of the contents API the
// store uses, enforcing the same SHA preconditions as GitHub.
type fakeGitHub struct {
	mu      sync.Mutex
	content []byte
	sha     string
	commits int
	lastReq map[string]any
	auth    string
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.auth = r.Header.Get("Authorization")
	if r.URL.Path != contentsPath {
		writeGitHubError(w, http.StatusNotFound, "Not Found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if f.sha == "" {
			writeGitHubError(w, http.StatusNotFound, "Not Found")
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":     "file",
			"encoding": "base64",
			"name":     "trips.json",
			"path":     "data/trips.json",
			"sha":      f.sha,
			"content":  base64.StdEncoding.EncodeToString(f.content),
		})

	case http.MethodPut:
		var body struct {
			Message string `json:"message"`
			Content []byte `json:"content"`
			SHA     string `json:"sha"`
			Branch  string `json:"branch"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeGitHubError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.lastReq = map[string]any{"message": body.Message, "sha": body.SHA, "branch": body.Branch}

		switch {
		case body.SHA == "" && f.sha != "":
			writeGitHubError(w, http.StatusUnprocessableEntity, `Invalid request. "sha" wasn't supplied.`)
			return
		case body.SHA != f.sha:
			writeGitHubError(w, http.StatusConflict, "data/trips.json does not match "+body.SHA)
			return
		}

		f.content = body.Content
		f.sha = domain.BlobSHA(body.Content)
		f.commits++
		status := http.StatusOK
		if body.SHA == "" {
			status = http.StatusCreated
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]any{"name": "trips.json", "path": "data/trips.json", "sha": f.sha},
			"commit":  map[string]any{"sha": "commit-" + f.sha[:7], "message": body.Message},
		})

	default:
		writeGitHubError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func writeGitHubError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func newGitHubStore(t *testing.T, fake *fakeGitHub, token string) *repo.GitHubStore {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	store, err := repo.NewGitHubStore(repo.GitHubConfig{
		Token:  token,
		Owner:  "acme",
		Repo:   "trips",
		Path:   "data/trips.json",
		Branch: "main",
		APIURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)
	return store
}

func TestGitHubStore_Load_NotFound(t *testing.T) {
	store := newGitHubStore(t, &fakeGitHub{}, "tok")

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGitHubStore_Load_DecodesContent(t *testing.T) {
	data := []byte(`[{"name":"Lisbon"}]`)
	fake := &fakeGitHub{content: data, sha: domain.BlobSHA(data)}
	store := newGitHubStore(t, fake, "tok")

	snap, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, data, snap.Data)
	assert.Equal(t, domain.BlobSHA(data), snap.SHA)
	assert.Equal(t, "Bearer tok", fake.auth)
}

func TestGitHubStore_Save_CreateThenUpdate(t *testing.T) {
	fake := &fakeGitHub{}
	store := newGitHubStore(t, fake, "tok")
	ctx := context.Background()

	first := []byte(`[]`)
	created, err := store.Save(ctx, first, "")
	require.NoError(t, err)
	assert.True(t, created.Created)
	assert.Equal(t, domain.BlobSHA(first), created.SHA)
	assert.NotEmpty(t, created.CommitSHA)
	assert.Equal(t, repo.DefaultCommitMessage, fake.lastReq["message"])
	assert.Equal(t, "main", fake.lastReq["branch"])

	second := []byte(`[{"name":"Porto"}]`)
	updated, err := store.Save(ctx, second, created.SHA)
	require.NoError(t, err)
	assert.False(t, updated.Created)
	assert.Equal(t, domain.BlobSHA(second), updated.SHA)
	assert.Equal(t, created.SHA, fake.lastReq["sha"])

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, snap.Data)
	assert.Equal(t, 2, fake.commits)
}

func TestGitHubStore_Save_StaleParentIsConflict(t *testing.T) {
	data := []byte(`[]`)
	fake := &fakeGitHub{content: data, sha: domain.BlobSHA(data)}
	store := newGitHubStore(t, fake, "tok")

	_, err := store.Save(context.Background(), []byte(`[{}]`), "0000000000000000000000000000000000000000")

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 0, fake.commits)
}

func TestGitHubStore_Save_CreateOverExistingIsConflict(t *testing.T) {
	data := []byte(`[]`)
	fake := &fakeGitHub{content: data, sha: domain.BlobSHA(data)}
	store := newGitHubStore(t, fake, "tok")

	_, err := store.Save(context.Background(), []byte(`[{}]`), "")

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGitHubStore_MissingToken(t *testing.T) {
	store := newGitHubStore(t, &fakeGitHub{}, "")
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = store.Save(ctx, []byte(`[]`), "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestGitHubStore_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeGitHubError(w, http.StatusInternalServerError, "boom")
	}))
	t.Cleanup(srv.Close)
	store, err := repo.NewGitHubStore(repo.GitHubConfig{
		Token: "tok", Owner: "acme", Repo: "trips", Path: "data/trips.json", APIURL: srv.URL,
	}, srv.Client())
	require.NoError(t, err)

	_, err = store.Load(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrNotConfigured)
}
