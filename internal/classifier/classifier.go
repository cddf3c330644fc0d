// Package classifier decides whether a checked-out working tree holds real
// source code or mostly documentation.
package classifier

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// vcsDir is never descended into; its object files would swamp the ratio.
const vcsDir = ".git"

// Rules are the tuning knobs of the heuristic.
type Rules struct {
	// AllowedExtensions lists lowercase extensions without the leading dot.
	AllowedExtensions []string
	// MinSourceRatio is the smallest source/total ratio that is accepted.
	MinSourceRatio float64
	// MaxDepth limits the walk. Files directly under the root are at depth 1.
	// Zero or less walks the whole tree.
	MaxDepth int
}

type Result struct {
	SourceFileCount    int      `json:"source_file_count"`
	TotalFileCount     int      `json:"total_file_count"`
	SourceRatio        float64  `json:"source_ratio"`
	IsSourceRepo       bool     `json:"is_source_repo"`
	DistinctExtensions []string `json:"distinct_extensions"`
}

type Classifier struct {
	fs afero.Fs
}

// New returns a Classifier reading from fs. A nil fs uses the OS filesystem.
func New(fs afero.Fs) *Classifier {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Classifier{fs: fs}
}

// Classify walks root and counts files whose extension is allowed by rules.
// Subdirectories that cannot be read are skipped; an unreadable root is an
// error.
func (c *Classifier) Classify(root string, rules Rules) (Result, error) {
	info, err := c.fs.Stat(root)
	if err != nil {
		return Result{}, fmt.Errorf("classify %s: %w", root, err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("classify %s: not a directory", root)
	}

	allowed := make(map[string]struct{}, len(rules.AllowedExtensions))
	for _, ext := range rules.AllowedExtensions {
		allowed[normalizeExt(ext)] = struct{}{}
	}

	var result Result
	extensions := make(map[string]struct{})

	walkErr := afero.Walk(c.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if info == nil || info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if info.Name() == vcsDir {
				return filepath.SkipDir
			}
			if rules.MaxDepth > 0 && depth(root, path) >= rules.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		result.TotalFileCount++
		ext := normalizeExt(filepath.Ext(info.Name()))
		if ext == "" {
			return nil
		}
		extensions[ext] = struct{}{}
		if _, ok := allowed[ext]; ok {
			result.SourceFileCount++
		}
		return nil
	})
	if walkErr != nil {
		return Result{}, fmt.Errorf("classify %s: %w", root, walkErr)
	}

	if result.TotalFileCount > 0 {
		result.SourceRatio = float64(result.SourceFileCount) / float64(result.TotalFileCount)
	}
	result.IsSourceRepo = result.SourceRatio >= rules.MinSourceRatio && result.SourceFileCount > 0

	result.DistinctExtensions = make([]string, 0, len(extensions))
	for ext := range extensions {
		result.DistinctExtensions = append(result.DistinctExtensions, ext)
	}
	sort.Strings(result.DistinctExtensions)

	return result, nil
}

// depth returns how many path elements path lies below root.
func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
