package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"shelfguard-hq/shelfguard/pkg/config"
)

const syncTimeout = 60 * time.Second

// CommitInfo contains metadata about the checked-out commit.
type CommitInfo struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Branch    string    `json:"branch"`
}

// SyncResult describes the outcome of one Sync call.
type SyncResult struct {
	FromSHA    string
	ToSHA      string
	HadChanges bool
}

// Source keeps a local checkout of a git repository holding rule packs
// and exposes the directory the registry should load from.
type Source struct {
	config config.GitConfig
	repo   *gogit.Repository
	mu     sync.Mutex
}

// NewSource creates a pack source for the configured repository.
func NewSource(cfg config.GitConfig) (*Source, error) {
	if cfg.Repo == "" {
		return nil, fmt.Errorf("git pack source: repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("git pack source: branch cannot be empty")
	}
	return &Source{config: cfg}, nil
}

// PacksDir returns the local directory the registry should scan. It is
// the checkout directory joined with the configured subpath.
func (s *Source) PacksDir() string {
	return filepath.Join(s.config.Dir, s.config.Path)
}

// Sync brings the local checkout up to date. The first call clones (or
// opens an existing checkout); later calls pull. It reports whether the
// checkout moved to a new commit.
func (s *Source) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	if s.repo == nil {
		if err := s.cloneOrOpen(ctx); err != nil {
			return nil, err
		}
		head, err := s.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("git pack source: failed to read HEAD: %w", err)
		}
		sha := head.Hash().String()
		return &SyncResult{FromSHA: "", ToSHA: sha, HadChanges: true}, nil
	}

	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("git pack source: failed to read HEAD: %w", err)
	}
	fromSHA := head.Hash().String()

	worktree, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("git pack source: failed to get worktree: %w", err)
	}

	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName: "origin",
		Auth:       authFromEnv(),
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("git pack source: pull failed: %w", err)
	}

	newHead, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("git pack source: failed to read HEAD after pull: %w", err)
	}
	toSHA := newHead.Hash().String()

	return &SyncResult{
		FromSHA:    fromSHA,
		ToSHA:      toSHA,
		HadChanges: fromSHA != toSHA,
	}, nil
}

func (s *Source) cloneOrOpen(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(s.config.Dir, ".git")); err == nil {
		repo, err := gogit.PlainOpen(s.config.Dir)
		if err != nil {
			return fmt.Errorf("git pack source: failed to open existing checkout: %w", err)
		}
		s.repo = repo
		return nil
	}

	if err := os.MkdirAll(s.config.Dir, 0o755); err != nil {
		return fmt.Errorf("git pack source: failed to create checkout directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, s.config.Dir, false, &gogit.CloneOptions{
		URL:           s.config.Repo,
		ReferenceName: plumbing.NewBranchReferenceName(s.config.Branch),
		SingleBranch:  true,
		Auth:          authFromEnv(),
	})
	if err != nil {
		return fmt.Errorf("git pack source: clone failed: %w", err)
	}

	s.repo = repo
	return nil
}

// CurrentCommit returns metadata about the checked-out commit.
func (s *Source) CurrentCommit() (*CommitInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil, fmt.Errorf("git pack source: not synced yet")
	}

	head, err := s.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("git pack source: failed to read HEAD: %w", err)
	}
	commit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("git pack source: failed to read commit: %w", err)
	}

	return &CommitInfo{
		SHA:       commit.Hash.String(),
		Author:    commit.Author.Name,
		Timestamp: commit.Author.When,
		Message:   commit.Message,
		Branch:    s.config.Branch,
	}, nil
}

// authFromEnv returns token auth when SHELFGUARD_POLICY_GIT_TOKEN is
// set, nil otherwise. Unauthenticated access works for public repos.
func authFromEnv() transport.AuthMethod {
	token := os.Getenv("SHELFGUARD_POLICY_GIT_TOKEN")
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: token}
}
