package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/relay/internal/workspace"
)

// newFixtureRepo creates a local repository with one commit on "main" and
// returns its path.
func newFixtureRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("fixture\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "fixture", Email: "fixture@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestGitSourceCheckout(t *testing.T) {
	src := workspace.NewGitSource(newFixtureRepo(t), "")

	ws, err := src.Checkout(context.Background(), "main")
	require.NoError(t, err)
	defer ws.Remove()

	data, err := os.ReadFile(filepath.Join(ws.Dir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "fixture\n", string(data))
}

func TestGitSourceCheckoutsAreIndependent(t *testing.T) {
	src := workspace.NewGitSource(newFixtureRepo(t), "")

	a, err := src.Checkout(context.Background(), "main")
	require.NoError(t, err)
	defer a.Remove()
	b, err := src.Checkout(context.Background(), "main")
	require.NoError(t, err)
	defer b.Remove()

	assert.NotEqual(t, a.Dir, b.Dir)

	// Mutating one checkout must not leak into the other.
	require.NoError(t, os.WriteFile(filepath.Join(a.Dir, "scratch"), []byte("x"), 0o644))
	_, err = os.Stat(filepath.Join(b.Dir, "scratch"))
	assert.True(t, os.IsNotExist(err))
}

func TestGitSourceCheckoutMissingBranch(t *testing.T) {
	src := workspace.NewGitSource(newFixtureRepo(t), "")

	_, err := src.Checkout(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestWorkspaceRemove(t *testing.T) {
	src := workspace.NewGitSource(newFixtureRepo(t), "")

	ws, err := src.Checkout(context.Background(), "main")
	require.NoError(t, err)
	require.NoError(t, ws.Remove())

	_, err = os.Stat(ws.Dir)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is harmless.
	assert.NoError(t, ws.Remove())
}
