package repo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// DefaultCommitMessage is used when GitHubConfig.CommitMessage is empty.
const DefaultCommitMessage = "Update trips data"

// GitHubConfig locates the collection file in a GitHub repository.
type GitHubConfig struct {
	Token         string
	Owner         string
	Repo          string
	Path          string
	Branch        string
	APIURL        string // empty uses api.github.com
	CommitMessage string
}

// GitHubStore keeps the collection as a single file in a GitHub repository
// using the contents API. The file's blob SHA is the version token.
type GitHubStore struct {
	client *github.Client
	cfg    GitHubConfig
}

var _ TripStore = (*GitHubStore)(nil)

// NewGitHubStore builds a store using hc for transport (nil uses
// http.DefaultClient). A missing token is not an error here; Load and Save
// report domain.ErrNotConfigured instead so the server can still start.
func NewGitHubStore(cfg GitHubConfig, hc *http.Client) (*GitHubStore, error) {
	client := github.NewClient(hc)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.APIURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("repo.NewGitHubStore: parse api url: %w", err)
		}
		client.BaseURL = u
	}
	if cfg.CommitMessage == "" {
		cfg.CommitMessage = DefaultCommitMessage
	}
	return &GitHubStore{client: client, cfg: cfg}, nil
}

// Load fetches the file at the configured path and branch.
func (s *GitHubStore) Load(ctx context.Context) (domain.Snapshot, error) {
	if err := s.configured(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("repo.GitHubStore.Load: %w", err)
	}

	opts := &github.RepositoryContentGetOptions{Ref: s.cfg.Branch}
	file, _, resp, err := s.client.Repositories.GetContents(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	if err != nil {
		if statusOf(resp) == http.StatusNotFound {
			return domain.Snapshot{}, fmt.Errorf("repo.GitHubStore.Load: %w", domain.ErrNotFound)
		}
		return domain.Snapshot{}, fmt.Errorf("repo.GitHubStore.Load: %w", err)
	}
	if file == nil {
		return domain.Snapshot{}, fmt.Errorf("repo.GitHubStore.Load: %s is a directory", s.cfg.Path)
	}

	content, err := file.GetContent()
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("repo.GitHubStore.Load: decode content: %w", err)
	}
	return domain.Snapshot{SHA: file.GetSHA(), Data: []byte(content)}, nil
}

// Save creates the file when parentSHA is empty and updates it otherwise.
// GitHub rejects an update whose SHA is stale with 409, and a create over an
// existing file with 422; both surface as domain.ErrConflict.
func (s *GitHubStore) Save(ctx context.Context, data []byte, parentSHA string) (domain.SaveResult, error) {
	if err := s.configured(); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.GitHubStore.Save: %w", err)
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(s.cfg.CommitMessage),
		Content: data,
	}
	if s.cfg.Branch != "" {
		opts.Branch = github.String(s.cfg.Branch)
	}

	var (
		res  *github.RepositoryContentResponse
		resp *github.Response
		err  error
	)
	if parentSHA == "" {
		res, resp, err = s.client.Repositories.CreateFile(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	} else {
		opts.SHA = github.String(parentSHA)
		res, resp, err = s.client.Repositories.UpdateFile(ctx, s.cfg.Owner, s.cfg.Repo, s.cfg.Path, opts)
	}
	if err != nil {
		switch statusOf(resp) {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return domain.SaveResult{}, fmt.Errorf("repo.GitHubStore.Save: %w: %v", domain.ErrConflict, err)
		}
		return domain.SaveResult{}, fmt.Errorf("repo.GitHubStore.Save: %w", err)
	}

	return domain.SaveResult{
		SHA:       res.GetContent().GetSHA(),
		CommitSHA: res.Commit.GetSHA(),
		Created:   parentSHA == "",
	}, nil
}

func (s *GitHubStore) configured() error {
	var missing []string
	if s.cfg.Token == "" {
		missing = append(missing, "token")
	}
	if s.cfg.Owner == "" {
		missing = append(missing, "owner")
	}
	if s.cfg.Repo == "" {
		missing = append(missing, "repo")
	}
	if s.cfg.Path == "" {
		missing = append(missing, "path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: github %s", domain.ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

func statusOf(resp *github.Response) int {
	if resp == nil || resp.Response == nil {
		return 0
	}
	return resp.StatusCode
}

