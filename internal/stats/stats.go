// Package stats computes analytics over enriched repositories. Nothing in
// this package performs I/O or returns an error.
package stats

import (
	"sort"

	"github-repo-insights/internal/model"
)

// Calculator holds the caps applied by the metrics.
type Calculator struct {
	// TopFiles is the number of most-churned files reported per repository.
	TopFiles int
	// ForkWindow is the number of leading forks inspected for new commits.
	ForkWindow int
}

// Default is the calculator used by the package-level helpers.
var Default = Calculator{TopFiles: 3, ForkWindow: 20}

// ChurnScore is the number of changed lines attributed to one file change.
// The forge's own changes counter wins when it is set.
func ChurnScore(f model.FileChange) int {
	if f.Changes != 0 {
		return f.Changes
	}
	return f.Additions + f.Deletions
}

// TopChangedFiles returns the names of the most churned files across the
// repository's detailed commits, highest score first and ties by name.
func (c Calculator) TopChangedFiles(repo *model.Repository) []string {
	byFile := make(map[string]int)
	for _, commit := range repo.RecentCommits {
		for _, file := range commit.Files {
			byFile[file.Filename] += ChurnScore(file)
		}
	}

	names := make([]string, 0, len(byFile))
	for name := range byFile {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byFile[names[i]] != byFile[names[j]] {
			return byFile[names[i]] > byFile[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > c.TopFiles {
		names = names[:c.TopFiles]
	}
	return names
}

// NewForkCommitCount sums, over the leading forks, the commits authored
// after each fork was created.
func (c Calculator) NewForkCommitCount(repo *model.Repository) int {
	forks := repo.Forks[:min(len(repo.Forks), c.ForkWindow)]

	total := 0
	for i := range forks {
		total += CountNewCommits(&forks[i])
	}
	return total
}

// CountNewCommits counts the fork's commits whose author date is strictly
// later than the fork's creation. A fork without a creation time yields 0.
func CountNewCommits(fork *model.Fork) int {
	if fork.CreatedAt == nil {
		return 0
	}

	count := 0
	for _, commit := range fork.RecentCommits {
		date := commit.AuthorDate()
		if date != nil && date.After(*fork.CreatedAt) {
			count++
		}
	}
	return count
}

// Aggregate builds the language report for repos, keeping their order.
// Run identity and timestamps are left for the caller to stamp.
func (c Calculator) Aggregate(language string, repos []model.Repository) model.LanguageReport {
	report := model.LanguageReport{
		Language: language,
		PerRepo:  make([]model.RepoMetrics, 0, len(repos)),
	}

	for i := range repos {
		repo := &repos[i]
		report.TotalStars += repo.StarsCount
		report.TotalForks += repo.ForksCount
		report.TotalOpenIssues += len(repo.Issues)
		report.TotalCommitCount += repo.CommitCount
		report.TotalNewForkCommits += c.NewForkCommitCount(repo)
		report.PerRepo = append(report.PerRepo, model.RepoMetrics{
			Slug:            repo.Slug(),
			TopChangedFiles: c.TopChangedFiles(repo),
		})
	}
	return report
}

func TopChangedFiles(repo *model.Repository) []string {
	return Default.TopChangedFiles(repo)
}

func NewForkCommitCount(repo *model.Repository) int {
	return Default.NewForkCommitCount(repo)
}

func Aggregate(language string, repos []model.Repository) model.LanguageReport {
	return Default.Aggregate(language, repos)
}
