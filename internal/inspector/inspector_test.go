package inspector

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-repo-insights/internal/classifier"
	"github-repo-insights/internal/model"
)

// fakeCloner materialises canned trees in an in-memory filesystem.
type fakeCloner struct {
	fs      afero.Fs
	trees   map[string][]string
	fail    map[string]error
	cloned  []string
	removed []string
	onClone func(slug string)
}

func (f *fakeCloner) Clone(_ context.Context, slug, dest string) error {
	f.cloned = append(f.cloned, slug)
	if f.onClone != nil {
		f.onClone(slug)
	}
	if err := f.fail[slug]; err != nil {
		return err
	}
	if err := f.fs.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, name := range f.trees[slug] {
		path := filepath.Join(dest, name)
		if err := f.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(f.fs, path, []byte("x"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCloner) Remove(dest string) error {
	f.removed = append(f.removed, dest)
	return f.fs.RemoveAll(dest)
}

func candidate(owner, name string) model.Repository {
	return model.Repository{RepositoryInfo: model.RepositoryInfo{Name: name, Owner: model.Owner{Login: owner}}}
}

func setup(t *testing.T, trees map[string][]string) (*Inspector, *fakeCloner, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	cl := &fakeCloner{fs: fs, trees: trees, fail: map[string]error{}}
	rules := classifier.Rules{AllowedExtensions: []string{"java", "xml"}, MinSourceRatio: 0.5}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cl, classifier.New(fs), "/clones", rules, logger), cl, fs
}

func TestFindSourceRepository_FirstAcceptedWins(t *testing.T) {
	insp, cl, fs := setup(t, map[string][]string{
		"a/guides": {"README.md", "one.md", "two.md"},
		"b/engine": {"Main.java", "pom.xml", "README.md"},
		"c/lib":    {"Lib.java"},
	})
	candidates := []model.Repository{candidate("a", "guides"), candidate("b", "engine"), candidate("c", "lib")}

	got, err := insp.FindSourceRepository(context.Background(), "Java", candidates)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b/engine", got.Slug())
	assert.Equal(t, []string{"a/guides", "b/engine"}, cl.cloned, "the loop stops at the first accepted candidate")
	assert.Equal(t, []string{"/clones/java-guides", "/clones/java-engine"}, cl.removed)
	for _, dest := range cl.removed {
		exists, err := afero.DirExists(fs, dest)
		require.NoError(t, err)
		assert.False(t, exists, "%s should be removed", dest)
	}
}

func TestFindSourceRepository_CloneFailureAdvances(t *testing.T) {
	insp, cl, _ := setup(t, map[string][]string{
		"b/engine": {"Main.java"},
	})
	cl.fail["a/broken"] = errors.New("repository not found")

	got, err := insp.FindSourceRepository(context.Background(), "Java",
		[]model.Repository{candidate("a", "broken"), candidate("b", "engine")})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "b/engine", got.Slug())
	assert.Len(t, cl.removed, 2, "a failed clone is cleaned up too")
}

func TestFindSourceRepository_NoneQualifies(t *testing.T) {
	insp, cl, _ := setup(t, map[string][]string{
		"a/docs":  {"README.md"},
		"b/empty": {},
	})

	got, err := insp.FindSourceRepository(context.Background(), "Java",
		[]model.Repository{candidate("a", "docs"), candidate("b", "empty")})

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{"a/docs", "b/empty"}, cl.cloned)
	assert.Len(t, cl.removed, 2)
}

func TestFindSourceRepository_EmptyCandidates(t *testing.T) {
	insp, cl, _ := setup(t, nil)

	got, err := insp.FindSourceRepository(context.Background(), "Rust", nil)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, cl.cloned)
}

func TestFindSourceRepository_Cancelled(t *testing.T) {
	insp, cl, _ := setup(t, map[string][]string{
		"a/docs": {"README.md"},
		"b/code": {"Main.java"},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cl.onClone = func(string) { cancel() }

	got, err := insp.FindSourceRepository(ctx, "Java",
		[]model.Repository{candidate("a", "docs"), candidate("b", "code")})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
	assert.Equal(t, []string{"a/docs"}, cl.cloned)
}

func TestDestination(t *testing.T) {
	insp, _, _ := setup(t, nil)
	repo := candidate("llvm", "llvm-project")

	assert.Equal(t, "/clones/c++-llvm-project", insp.Destination("C++", &repo))
}
