package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// FileStore keeps the collection in a local JSON file. It serves the CLI and
// local development; the version token is the git blob SHA of the file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ TripStore = (*FileStore)(nil)

// NewFileStore returns a store reading and writing path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the file. A missing file is domain.ErrNotFound.
func (s *FileStore) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (domain.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Snapshot{}, fmt.Errorf("repo.FileStore.Load: %s: %w", s.path, domain.ErrNotFound)
		}
		return domain.Snapshot{}, fmt.Errorf("repo.FileStore.Load: %w", err)
	}
	snap := domain.Snapshot{SHA: domain.BlobSHA(data), Data: data}
	if info, err := os.Stat(s.path); err == nil {
		snap.UpdatedAt = info.ModTime()
	}
	return snap, nil
}

// Save replaces the file through a temp file and rename, after checking that
// parentSHA still matches its content.
func (s *FileStore) Save(ctx context.Context, data []byte, parentSHA string) (domain.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.SaveResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	snap, err := s.load()
	switch {
	case err == nil:
		current = snap.SHA
	case !errors.Is(err, domain.ErrNotFound):
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: %w", err)
	}
	if current != parentSHA {
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: %w: parent %q, current %q",
			domain.ErrConflict, parentSHA, current)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".trips-*.json")
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: write: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.FileStore.Save: rename: %w", err)
	}

	return domain.SaveResult{SHA: domain.BlobSHA(data), Created: parentSHA == ""}, nil
}
