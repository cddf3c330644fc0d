// internal/fetcher/fetcher.go
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "github-repo-insights/internal/errors"
	"github-repo-insights/internal/model"
)

const (
	maxSearchLimit = 100

	phaseCommits      = "list commits"
	phaseCommitDetail = "get commit detail"
	phaseIssues       = "list issues"
	phaseForks        = "list forks"
	phaseForkCommits  = "list fork commits"
)

// Forge is the read-only subset of the code forge API the fetcher needs.
type Forge interface {
	SearchTop(ctx context.Context, language string, limit int) ([]model.Repository, error)
	ListForks(ctx context.Context, owner, name string) ([]model.RepositoryInfo, error)
	ListRecentCommits(ctx context.Context, owner, name string) ([]model.Commit, error)
	GetCommitDetail(ctx context.Context, owner, name, sha string) (model.Commit, error)
	ListOpenIssues(ctx context.Context, owner, name string) ([]model.Issue, error)
}

// Limits bounds the amount of work done per language.
type Limits struct {
	// MaxDetailedCommits is how many of the listed commits get a detail fetch.
	MaxDetailedCommits int
	// MaxForks is how many forks per repository get their commits fetched.
	MaxForks int
	// Concurrency caps the number of in-flight units in a fan-out phase.
	Concurrency int
	// CallTimeout applies to every forge call. Zero disables it.
	CallTimeout time.Duration
}

// DefaultLimits returns the caps used when nothing else is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxDetailedCommits: 50,
		MaxForks:           20,
		Concurrency:        5,
		CallTimeout:        30 * time.Second,
	}
}

// Fetcher builds fully enriched repository trees for a language.
type Fetcher struct {
	forge  Forge
	logger *slog.Logger
	limits Limits
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(forge Forge, logger *slog.Logger, limits Limits) *Fetcher {
	if limits.Concurrency < 1 {
		limits.Concurrency = 1
	}
	return &Fetcher{
		forge:  forge,
		logger: logger,
		limits: limits,
	}
}

// FetchLanguageData returns the top repositories for language in forge
// ranking order, each enriched with commits, issues, forks and fork commits.
// Only a failing search is returned as an error; every later failure is
// logged and leaves the affected field empty.
func (f *Fetcher) FetchLanguageData(ctx context.Context, language string, limit int) ([]model.Repository, error) {
	logger := f.logger.With("language", language)
	limit = min(max(limit, 1), maxSearchLimit)

	logger.Info("[1/4] Fetching top repositories", "limit", limit)
	repos, err := f.searchTop(ctx, language, limit)
	if err != nil {
		return nil, &custom_errors.ErrLanguageFetch{Language: language, Err: err}
	}
	logger.Info("Found repositories", "count", len(repos))

	logger.Info("[2/4] Fetching commits and issues for each repository")
	f.enrichWithCommitsAndIssues(ctx, logger, repos)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("[3/4] Fetching forks for each repository")
	f.enrichWithForks(ctx, logger, repos)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Info("[4/4] Fetching commits for forked repositories")
	f.enrichForksWithCommits(ctx, logger, repos)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return repos, nil
}

func (f *Fetcher) searchTop(ctx context.Context, language string, limit int) ([]model.Repository, error) {
	callCtx, cancel := f.callContext(ctx)
	defer cancel()
	return f.forge.SearchTop(callCtx, language, limit)
}

// enrichWithCommitsAndIssues fans out over repositories. Each goroutine only
// writes repos[i], so the slice keeps its ranking order.
func (f *Fetcher) enrichWithCommitsAndIssues(ctx context.Context, logger *slog.Logger, repos []model.Repository) {
	f.forEach(ctx, len(repos), func(i int) {
		repo := &repos[i]
		f.enrichWithCommits(ctx, logger, repo)
		f.enrichWithIssues(ctx, logger, repo)
	})
}

func (f *Fetcher) enrichWithCommits(ctx context.Context, logger *slog.Logger, repo *model.Repository) {
	owner, name := repo.Owner.Login, repo.Name

	commits, err := f.listRecentCommits(ctx, owner, name)
	if err != nil {
		f.warn(logger, phaseCommits, repo.Slug(), err)
		return
	}
	repo.CommitCount = len(commits)
	logger.Info("Fetched commits", "repo", repo.Slug(), "count", len(commits))

	limit := min(len(commits), f.limits.MaxDetailedCommits)
	detailed := make([]model.Commit, 0, limit)
	for _, commit := range commits[:limit] {
		callCtx, cancel := f.callContext(ctx)
		full, err := f.forge.GetCommitDetail(callCtx, owner, name, commit.SHA)
		cancel()
		if err != nil {
			f.warn(logger, phaseCommitDetail, repo.Slug()+"@"+shortSHA(commit.SHA), err)
			continue
		}
		detailed = append(detailed, full)
	}
	repo.RecentCommits = detailed
}

func (f *Fetcher) enrichWithIssues(ctx context.Context, logger *slog.Logger, repo *model.Repository) {
	callCtx, cancel := f.callContext(ctx)
	defer cancel()

	issues, err := f.forge.ListOpenIssues(callCtx, repo.Owner.Login, repo.Name)
	if err != nil {
		f.warn(logger, phaseIssues, repo.Slug(), err)
		return
	}
	repo.Issues = issues
	logger.Info("Fetched open issues", "repo", repo.Slug(), "count", len(issues))
}

func (f *Fetcher) enrichWithForks(ctx context.Context, logger *slog.Logger, repos []model.Repository) {
	for i := range repos {
		repo := &repos[i]

		callCtx, cancel := f.callContext(ctx)
		forks, err := f.forge.ListForks(callCtx, repo.Owner.Login, repo.Name)
		cancel()
		if err != nil {
			f.warn(logger, phaseForks, repo.Slug(), err)
			continue
		}

		repo.Forks = make([]model.Fork, len(forks))
		for j, info := range forks {
			repo.Forks[j] = model.Fork{RepositoryInfo: info}
		}
		logger.Info("Fetched forks", "repo", repo.Slug(), "count", len(forks))
	}
}

func (f *Fetcher) enrichForksWithCommits(ctx context.Context, logger *slog.Logger, repos []model.Repository) {
	for i := range repos {
		repo := &repos[i]
		forks := repo.Forks[:min(len(repo.Forks), f.limits.MaxForks)]

		f.forEach(ctx, len(forks), func(j int) {
			fork := &forks[j]
			commits, err := f.listRecentCommits(ctx, fork.Owner.Login, fork.Name)
			if err != nil {
				f.warn(logger, phaseForkCommits, fork.Slug(), err)
				return
			}
			fork.CommitCount = len(commits)
			fork.RecentCommits = commits
		})

		withCommits := 0
		for _, fork := range forks {
			if fork.CommitCount > 0 {
				withCommits++
			}
		}
		if withCommits > 0 {
			logger.Info("Fetched fork commits", "repo", repo.Slug(), "forks_with_commits", withCommits, "forks_processed", len(forks))
		}
	}
}

func (f *Fetcher) listRecentCommits(ctx context.Context, owner, name string) ([]model.Commit, error) {
	callCtx, cancel := f.callContext(ctx)
	defer cancel()
	return f.forge.ListRecentCommits(callCtx, owner, name)
}

// forEach runs fn for every index in [0, n) with bounded concurrency and
// waits for all of them. fn never returns an error, so one unit cannot
// cancel its siblings.
func (f *Fetcher) forEach(ctx context.Context, n int, fn func(i int)) {
	var g errgroup.Group
	g.SetLimit(f.limits.Concurrency)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func (f *Fetcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.limits.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.limits.CallTimeout)
}

func (f *Fetcher) warn(logger *slog.Logger, phase, target string, err error) {
	unitErr := &custom_errors.ErrUnitFetch{Phase: phase, Target: target, Err: err}
	logger.Warn("Skipping degraded unit", "phase", phase, "target", target, "error", unitErr)
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
