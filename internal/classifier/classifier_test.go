package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var javaRules = Rules{
	AllowedExtensions: []string{"java", "xml", ".gradle"},
	MinSourceRatio:    0.1,
}

// memTree creates the given files under /repo in an in-memory filesystem.
func memTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0o755))
	for _, f := range files {
		path := filepath.Join("/repo", f)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0o644))
	}
	return fs
}

func TestClassify_RatioThreshold(t *testing.T) {
	fs := memTree(t,
		"src/Main.java", "pom.xml",
		"README.md", "docs/a.md", "docs/b.md", "docs/c.md", "docs/d.md",
		"img/logo.png", "img/banner.png", "LICENSE",
	)
	c := New(fs)

	result, err := c.Classify("/repo", javaRules)
	require.NoError(t, err)
	assert.Equal(t, 10, result.TotalFileCount)
	assert.Equal(t, 2, result.SourceFileCount)
	assert.InDelta(t, 0.2, result.SourceRatio, 1e-9)
	assert.True(t, result.IsSourceRepo)
	assert.Equal(t, []string{"java", "md", "png", "xml"}, result.DistinctExtensions)

	strict := javaRules
	strict.MinSourceRatio = 0.3
	result, err = c.Classify("/repo", strict)
	require.NoError(t, err)
	assert.False(t, result.IsSourceRepo)
}

func TestClassify_EmptyTree(t *testing.T) {
	c := New(memTree(t))

	result, err := c.Classify("/repo", Rules{AllowedExtensions: []string{"c"}, MinSourceRatio: 0})

	require.NoError(t, err)
	assert.Zero(t, result.TotalFileCount)
	assert.Zero(t, result.SourceRatio)
	assert.False(t, result.IsSourceRepo, "an empty tree is never a source repo")
	assert.Empty(t, result.DistinctExtensions)
}

func TestClassify_ZeroThresholdStillNeedsSourceFiles(t *testing.T) {
	c := New(memTree(t, "README.md", "notes.txt"))

	result, err := c.Classify("/repo", Rules{AllowedExtensions: []string{"rs"}, MinSourceRatio: 0})

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalFileCount)
	assert.False(t, result.IsSourceRepo)
}

func TestClassify_ExtensionsAreCaseInsensitive(t *testing.T) {
	c := New(memTree(t, "Main.JAVA", "Build.Gradle", "README"))

	result, err := c.Classify("/repo", javaRules)

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalFileCount, "files without extension still count toward the total")
	assert.Equal(t, 2, result.SourceFileCount)
	assert.Equal(t, []string{"gradle", "java"}, result.DistinctExtensions)
}

func TestClassify_MaxDepth(t *testing.T) {
	fs := memTree(t, "top.c", "a/mid.c", "a/b/deep.c", "a/b/c/deeper.c")
	c := New(fs)
	rules := Rules{AllowedExtensions: []string{"c"}, MinSourceRatio: 0.5}

	for _, tc := range []struct {
		maxDepth int
		want     int
	}{
		{maxDepth: 1, want: 1},
		{maxDepth: 2, want: 2},
		{maxDepth: 3, want: 3},
		{maxDepth: 0, want: 4},
	} {
		rules.MaxDepth = tc.maxDepth
		result, err := c.Classify("/repo", rules)
		require.NoError(t, err)
		assert.Equal(t, tc.want, result.TotalFileCount, "max depth %d", tc.maxDepth)
	}
}

func TestClassify_SkipsVCSDirectory(t *testing.T) {
	c := New(memTree(t, "main.rs", ".git/objects/aa/bbbb", ".git/config", ".git/HEAD"))

	result, err := c.Classify("/repo", Rules{AllowedExtensions: []string{"rs"}, MinSourceRatio: 0.5})

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalFileCount)
	assert.True(t, result.IsSourceRepo)
}

func TestClassify_MissingRoot(t *testing.T) {
	c := New(afero.NewMemMapFs())

	_, err := c.Classify("/nowhere", javaRules)

	assert.Error(t, err)
}

func TestClassify_UnreadableSubdirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "Main.java"), []byte("class Main {}"), 0o644))
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "hidden.md"), []byte("x"), 0o644))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	result, err := New(nil).Classify(root, javaRules)

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalFileCount)
	assert.True(t, result.IsSourceRepo)
}
