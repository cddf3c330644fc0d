// internal/model/models.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Owner identifies the account that owns a repository.
type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
	URL   string `json:"url"`
}

// RepositoryInfo holds the identity and popularity counters shared by
// top-level repositories and their forks.
type RepositoryInfo struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	URL             string     `json:"html_url"`
	StarsCount      int        `json:"stargazers_count"`
	ForksCount      int        `json:"forks_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	Language        *string    `json:"language,omitempty"`
	Owner           Owner      `json:"owner"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	HasIssues       bool       `json:"has_issues"`
}

// Slug returns the "owner/name" form of the repository.
func (r RepositoryInfo) Slug() string {
	return r.Owner.Login + "/" + r.Name
}

// Repository is a search hit enriched with commits, issues and forks.
// The derived fields are only populated by the fetcher.
type Repository struct {
	RepositoryInfo

	Forks         []Fork   `json:"forks"`
	RecentCommits []Commit `json:"recent_commits"`
	Issues        []Issue  `json:"issues"`
	CommitCount   int      `json:"commit_count"`
}

// Fork is a repository copy one level below a Repository. It carries no
// forks of its own, so the tree never grows deeper than one level.
type Fork struct {
	RepositoryInfo

	RecentCommits []Commit `json:"recent_commits"`
	CommitCount   int      `json:"commit_count"`
}

type Commit struct {
	SHA     string        `json:"sha"`
	Message string        `json:"message"`
	URL     string        `json:"html_url"`
	Author  *CommitAuthor `json:"author,omitempty"`
	Files   []FileChange  `json:"files"`
}

// AuthorDate returns the author timestamp, or nil when the forge did not
// report one.
func (c Commit) AuthorDate() *time.Time {
	if c.Author == nil {
		return nil
	}
	return c.Author.Date
}

type CommitAuthor struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Date  *time.Time `json:"date,omitempty"`
}

// FileChange is a file touched by a commit. Counters the forge omits are 0.
type FileChange struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Status    string `json:"status"`
}

type Issue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	URL       string    `json:"html_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RepoMetrics is the per-repository part of a LanguageReport.
type RepoMetrics struct {
	Slug            string   `json:"slug"`
	TopChangedFiles []string `json:"top_changed_files"`
}

// LanguageReport is the aggregate computed over the enriched top
// repositories of one language.
type LanguageReport struct {
	RunID               uuid.UUID     `json:"run_id"`
	Language            string        `json:"language"`
	GeneratedAt         time.Time     `json:"generated_at"`
	TotalStars          int           `json:"total_stars"`
	TotalForks          int           `json:"total_forks"`
	TotalOpenIssues     int           `json:"total_open_issues"`
	TotalCommitCount    int           `json:"total_commit_count"`
	TotalNewForkCommits int           `json:"total_new_fork_commits"`
	PerRepo             []RepoMetrics `json:"per_repo"`
	SourceRepo          string        `json:"source_repo,omitempty"`
}
