// internal/runner/runner.go
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	custom_errors "github-repo-insights/internal/errors"
	"github-repo-insights/internal/model"
	"github-repo-insights/internal/stats"
	"github-repo-insights/internal/store"
)

type Fetcher interface {
	FetchLanguageData(ctx context.Context, language string, limit int) ([]model.Repository, error)
}

type Inspector interface {
	FindSourceRepository(ctx context.Context, language string, candidates []model.Repository) (*model.Repository, error)
}

type Options struct {
	Languages  []string
	TopN       int
	Calculator stats.Calculator
}

// Runner drives one batch run over every configured language.
type Runner struct {
	fetcher   Fetcher
	inspector Inspector
	store     store.Store
	logger    *slog.Logger
	opts      Options

	now   func() time.Time
	newID func() uuid.UUID
}

func New(fetcher Fetcher, inspector Inspector, st store.Store, logger *slog.Logger, opts Options) *Runner {
	return &Runner{
		fetcher:   fetcher,
		inspector: inspector,
		store:     st,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		newID:     uuid.New,
	}
}

// Run processes the languages in order and returns the reports it stored.
// A language whose search fails is logged and skipped. Store failures and
// cancellation end the run.
func (r *Runner) Run(ctx context.Context) ([]model.LanguageReport, error) {
	runID := r.newID()
	r.logger.Info("Starting run", "run_id", runID, "languages", r.opts.Languages, "top_n", r.opts.TopN)

	reports := make([]model.LanguageReport, 0, len(r.opts.Languages))
	for _, language := range r.opts.Languages {
		report, err := r.RunLanguage(ctx, runID, language)
		if err != nil {
			var fetchErr *custom_errors.ErrLanguageFetch
			if errors.As(err, &fetchErr) && ctx.Err() == nil {
				r.logger.Error("Skipping language", "language", language, "error", err)
				continue
			}
			return reports, err
		}
		reports = append(reports, *report)
	}

	r.logger.Info("Run finished", "run_id", runID, "reports", len(reports))
	return reports, nil
}

// RunLanguage fetches, aggregates, inspects and stores one language.
func (r *Runner) RunLanguage(ctx context.Context, runID uuid.UUID, language string) (*model.LanguageReport, error) {
	logger := r.logger.With("language", language, "run_id", runID)

	repos, err := r.fetcher.FetchLanguageData(ctx, language, r.opts.TopN)
	if err != nil {
		return nil, err
	}

	report := r.opts.Calculator.Aggregate(language, repos)
	report.RunID = runID
	report.GeneratedAt = r.now().UTC()
	logSummary(logger, &report)

	selected, err := r.inspector.FindSourceRepository(ctx, language, repos)
	if err != nil {
		return nil, err
	}
	if selected != nil {
		report.SourceRepo = selected.Slug()
		logger.Info("Selected source repository", "repo", report.SourceRepo)
		if err := r.store.PersistRepository(ctx, selected); err != nil {
			return nil, err
		}
	}

	if err := r.store.PersistReport(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func logSummary(logger *slog.Logger, report *model.LanguageReport) {
	logger.Info("Language summary",
		"total_stars", report.TotalStars,
		"total_forks", report.TotalForks,
		"total_open_issues", report.TotalOpenIssues,
		"total_commits", report.TotalCommitCount,
		"new_fork_commits", report.TotalNewForkCommits,
	)
	for _, m := range report.PerRepo {
		logger.Info("Top changed files", "repo", m.Slug, "files", m.TopChangedFiles)
	}
}
