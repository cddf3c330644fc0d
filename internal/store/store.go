// Package store defines where finished repositories and language reports
// are persisted. Backends live in the subpackages.
package store

import (
	"context"
	"errors"
	"strings"

	"github-repo-insights/internal/model"
)

// ErrNotFound is returned by GetReport when no report exists for a language.
var ErrNotFound = errors.New("not found")

type Store interface {
	// PersistRepository writes the repository, its owner and its open issues.
	PersistRepository(ctx context.Context, repo *model.Repository) error
	// PersistReport replaces the stored report for report.Language.
	PersistReport(ctx context.Context, report *model.LanguageReport) error
	// GetReport returns the latest report for language, or ErrNotFound.
	GetReport(ctx context.Context, language string) (*model.LanguageReport, error)
}

// LanguageKey normalises a language name for use in keys and lookups, so
// "C++" and "c++" address the same report.
func LanguageKey(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
