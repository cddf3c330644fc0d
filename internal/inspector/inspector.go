// Package inspector picks the first top repository whose working tree is
// predominantly source code.
package inspector

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github-repo-insights/internal/classifier"
	custom_errors "github-repo-insights/internal/errors"
	"github-repo-insights/internal/model"
)

type Cloner interface {
	Clone(ctx context.Context, slug, dest string) error
	Remove(dest string) error
}

type Classifier interface {
	Classify(root string, rules classifier.Rules) (classifier.Result, error)
}

type Inspector struct {
	cloner     Cloner
	classifier Classifier
	baseDir    string
	rules      classifier.Rules
	logger     *slog.Logger
}

func New(cloner Cloner, cls Classifier, baseDir string, rules classifier.Rules, logger *slog.Logger) *Inspector {
	return &Inspector{
		cloner:     cloner,
		classifier: cls,
		baseDir:    baseDir,
		rules:      rules,
		logger:     logger,
	}
}

// Destination is where a candidate of the given language is checked out.
func (i *Inspector) Destination(language string, repo *model.Repository) string {
	return filepath.Join(i.baseDir, fmt.Sprintf("%s-%s", strings.ToLower(language), repo.Name))
}

// FindSourceRepository clones candidates one at a time in the given order and
// returns the first one the classifier accepts, or nil when none qualifies.
// Every working tree is removed before returning. Only cancellation of ctx is
// reported as an error.
func (i *Inspector) FindSourceRepository(ctx context.Context, language string, candidates []model.Repository) (*model.Repository, error) {
	for idx := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		repo := &candidates[idx]
		result, err := i.inspect(ctx, language, repo)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			i.logger.Warn("Skipping candidate", "language", language, "error", err)
			continue
		}

		i.logger.Info("Classified candidate",
			"language", language,
			"repo", repo.Slug(),
			"source_files", result.SourceFileCount,
			"total_files", result.TotalFileCount,
			"ratio", result.SourceRatio,
			"accepted", result.IsSourceRepo,
		)
		if result.IsSourceRepo {
			return repo, nil
		}
	}

	i.logger.Info("No candidate qualified as a source repository", "language", language, "candidates", len(candidates))
	return nil, nil
}

func (i *Inspector) inspect(ctx context.Context, language string, repo *model.Repository) (classifier.Result, error) {
	slug := repo.Slug()
	dest := i.Destination(language, repo)
	defer func() {
		if err := i.cloner.Remove(dest); err != nil {
			i.logger.Warn("Failed to remove working tree", "path", dest, "error", err)
		}
	}()

	if err := i.cloner.Clone(ctx, slug, dest); err != nil {
		return classifier.Result{}, &custom_errors.ErrClone{Slug: slug, Err: err}
	}

	result, err := i.classifier.Classify(dest, i.rules)
	if err != nil {
		return classifier.Result{}, &custom_errors.ErrClone{Slug: slug, Err: err}
	}
	return result, nil
}
