// Package workspace prepares isolated source checkouts for pipeline jobs.
// Every job owns its checkout exclusively for its duration; nothing is shared
// between jobs and everything is removed when the job ends.
package workspace

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Workspace is a prepared checkout on disk.
type Workspace struct {
	// Dir is the root of the checked-out worktree.
	Dir string
}

// Remove deletes the checkout from disk.
func (w *Workspace) Remove() error {
	if w.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", w.Dir, err)
	}
	return nil
}

// Source produces fresh checkouts. The concrete GitSource clones with go-git;
// tests substitute fakes so the engine runs without a real repository.
type Source interface {
	// Checkout prepares an isolated checkout of branch and returns it.
	// The caller owns the returned workspace and must Remove it.
	Checkout(ctx context.Context, branch string) (*Workspace, error)
}

// GitSource clones a remote repository into per-job temporary directories,
// including any nested submodules.
type GitSource struct {
	// URL is the clone URL of the repository under verification.
	URL string

	// Token optionally authenticates HTTPS clones of private repositories.
	Token string
}

// NewGitSource returns a source cloning from url. token may be empty for
// public repositories.
func NewGitSource(url, token string) *GitSource {
	return &GitSource{URL: url, Token: token}
}

// Checkout implements Source. The clone is shallow and single-branch: jobs
// verify one revision and never walk history. Submodules are checked out
// recursively so nested sub-repositories are present.
func (s *GitSource) Checkout(ctx context.Context, branch string) (*Workspace, error) {
	dir, err := os.MkdirTemp("", "relay-job-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace directory: %w", err)
	}

	opts := &git.CloneOptions{
		URL:               s.URL,
		ReferenceName:     plumbing.NewBranchReferenceName(branch),
		SingleBranch:      true,
		Depth:             1,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}
	if s.Token != "" {
		opts.Auth = &http.BasicAuth{Username: "x-access-token", Password: s.Token}
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		// Best-effort cleanup of the partial clone.
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to clone %s at branch %s: %w", s.URL, branch, err)
	}

	return &Workspace{Dir: dir}, nil
}
