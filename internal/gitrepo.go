package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	DefaultAuthor = "lod"
	DefaultEmail  = "lod@local"
)

// GitRepository wraps the project's own repository for committing
// sidecar updates alongside the code they describe.
type GitRepository struct {
	repo     *git.Repository
	worktree *git.Worktree
	rootPath string
}

func NewGitRepository(root string) (*GitRepository, error) {
	gitDir, err := FindGitDir(root)
	if err != nil {
		return nil, err
	}

	fs := osfs.New(gitDir)
	storage := filesystem.NewStorage(fs, cache.NewObjectLRUDefault())
	wt := osfs.New(filepath.Dir(gitDir))

	repo, err := git.Open(storage, wt)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("get worktree: %w", err)
	}

	return &GitRepository{
		repo:     repo,
		worktree: worktree,
		rootPath: filepath.Dir(gitDir),
	}, nil
}

// CommitSidecars stages everything under the sidecar tree and commits
// it. A clean tree commits nothing and returns "".
func (r *GitRepository) CommitSidecars(ctx context.Context, ws Workspace, message string) (string, error) {
	rel, err := filepath.Rel(r.rootPath, ws.SidecarDir())
	if err != nil {
		return "", fmt.Errorf("get relative path: %w", err)
	}
	if strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("sidecar directory %s outside repository %s", ws.SidecarDir(), r.rootPath)
	}

	if err := r.worktree.AddWithOptions(&git.AddOptions{Path: rel}); err != nil {
		return "", fmt.Errorf("stage sidecars: %w", err)
	}

	status, err := r.worktree.Status()
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	if !hasStagedChanges(status, rel) {
		return "", nil
	}

	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  DefaultAuthor,
			Email: DefaultEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}

func hasStagedChanges(status git.Status, prefix string) bool {
	for path, s := range status {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			return true
		}
	}
	return false
}
