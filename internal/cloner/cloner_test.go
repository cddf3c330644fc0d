package cloner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedRepository creates a one-commit repository at base/<slug>.git.
func seedRepository(t *testing.T, base, slug string, files map[string]string) {
	t.Helper()
	path := filepath.Join(base, slug+".git")
	repo, err := git.PlainInit(path, false)
	require.NoError(t, err)

	for name, content := range files {
		full := filepath.Join(path, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddGlob("."))
	_, err = wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
}

func TestURL(t *testing.T) {
	c := New(Options{BaseURL: "https://github.com/"}, discardLogger())

	assert.Equal(t, "https://github.com/rust-lang/rust.git", c.URL("rust-lang/rust"))
}

func TestClone_LocalRepository(t *testing.T) {
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is required for the file transport")
		}
	}
	base := t.TempDir()
	seedRepository(t, base, "octo/widget", map[string]string{
		"src/main.c": "int main(void) { return 0; }",
		"README.md":  "# widget",
	})

	dest := filepath.Join(t.TempDir(), "c-widget")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("old"), 0o644))

	c := New(Options{BaseURL: base}, discardLogger())
	require.NoError(t, c.Clone(context.Background(), "octo/widget", dest))

	assert.FileExists(t, filepath.Join(dest, "src", "main.c"))
	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.NoFileExists(t, filepath.Join(dest, "stale.txt"), "previous contents are replaced")

	require.NoError(t, c.Remove(dest))
	assert.NoDirExists(t, dest)
}

func TestClone_MissingRepositoryLeavesNothingBehind(t *testing.T) {
	base := t.TempDir()
	dest := filepath.Join(t.TempDir(), "rust-ghost")

	c := New(Options{BaseURL: base}, discardLogger())
	err := c.Clone(context.Background(), "nobody/ghost", dest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody/ghost")
	assert.NoDirExists(t, dest)
}

func TestRemove_MissingPathIsNotAnError(t *testing.T) {
	c := New(Options{}, discardLogger())

	assert.NoError(t, c.Remove(filepath.Join(t.TempDir(), "never-created")))
}
