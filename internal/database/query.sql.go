package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type CreateIssuesParams struct {
	RepositoryID   int64
	Position       int32
	GithubIssueID  int64
	Number         int32
	Title          string
	Body           string
	State          string
	Url            string
	IssueCreatedAt pgtype.Timestamptz
	IssueUpdatedAt pgtype.Timestamptz
}

const deleteIssuesByRepoID = `-- name: DeleteIssuesByRepoID :exec
DELETE FROM issues WHERE repository_id = $1
`

func (q *Queries) DeleteIssuesByRepoID(ctx context.Context, repositoryID int64) error {
	_, err := q.db.Exec(ctx, deleteIssuesByRepoID, repositoryID)
	return err
}

const getIssuesByRepoID = `-- name: GetIssuesByRepoID :many
SELECT repository_id, position, github_issue_id, number, title, body, state, url,
    issue_created_at, issue_updated_at
FROM issues
WHERE repository_id = $1
ORDER BY position
`

func (q *Queries) GetIssuesByRepoID(ctx context.Context, repositoryID int64) ([]Issue, error) {
	rows, err := q.db.Query(ctx, getIssuesByRepoID, repositoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Issue
	for rows.Next() {
		var i Issue
		if err := rows.Scan(
			&i.RepositoryID,
			&i.Position,
			&i.GithubIssueID,
			&i.Number,
			&i.Title,
			&i.Body,
			&i.State,
			&i.Url,
			&i.IssueCreatedAt,
			&i.IssueUpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getLanguageReport = `-- name: GetLanguageReport :one
SELECT language, run_id, generated_at, report
FROM language_reports
WHERE language = $1
`

func (q *Queries) GetLanguageReport(ctx context.Context, language string) (LanguageReport, error) {
	row := q.db.QueryRow(ctx, getLanguageReport, language)
	var i LanguageReport
	err := row.Scan(
		&i.Language,
		&i.RunID,
		&i.GeneratedAt,
		&i.Report,
	)
	return i, err
}

const getRepositoryByOwnerAndName = `-- name: GetRepositoryByOwnerAndName :one
SELECT id, github_repo_id, owner, name, full_name, url, language,
    stars_count, forks_count, open_issues_count, commit_count, repo_created_at, fetched_at
FROM repositories
WHERE owner = $1 AND name = $2
`

type GetRepositoryByOwnerAndNameParams struct {
	Owner string
	Name  string
}

func (q *Queries) GetRepositoryByOwnerAndName(ctx context.Context, arg GetRepositoryByOwnerAndNameParams) (Repository, error) {
	row := q.db.QueryRow(ctx, getRepositoryByOwnerAndName, arg.Owner, arg.Name)
	var i Repository
	err := row.Scan(
		&i.ID,
		&i.GithubRepoID,
		&i.Owner,
		&i.Name,
		&i.FullName,
		&i.Url,
		&i.Language,
		&i.StarsCount,
		&i.ForksCount,
		&i.OpenIssuesCount,
		&i.CommitCount,
		&i.RepoCreatedAt,
		&i.FetchedAt,
	)
	return i, err
}

const upsertAuthor = `-- name: UpsertAuthor :exec
INSERT INTO authors (login, github_id, url)
VALUES ($1, $2, $3)
ON CONFLICT (login) DO UPDATE
SET github_id = EXCLUDED.github_id,
    url = EXCLUDED.url
`

type UpsertAuthorParams struct {
	Login    string
	GithubID int64
	Url      string
}

func (q *Queries) UpsertAuthor(ctx context.Context, arg UpsertAuthorParams) error {
	_, err := q.db.Exec(ctx, upsertAuthor, arg.Login, arg.GithubID, arg.Url)
	return err
}

const upsertLanguageReport = `-- name: UpsertLanguageReport :exec
INSERT INTO language_reports (language, run_id, generated_at, report)
VALUES ($1, $2, $3, $4)
ON CONFLICT (language) DO UPDATE
SET run_id = EXCLUDED.run_id,
    generated_at = EXCLUDED.generated_at,
    report = EXCLUDED.report
`

type UpsertLanguageReportParams struct {
	Language    string
	RunID       pgtype.UUID
	GeneratedAt pgtype.Timestamptz
	Report      []byte
}

func (q *Queries) UpsertLanguageReport(ctx context.Context, arg UpsertLanguageReportParams) error {
	_, err := q.db.Exec(ctx, upsertLanguageReport,
		arg.Language,
		arg.RunID,
		arg.GeneratedAt,
		arg.Report,
	)
	return err
}

const upsertRepository = `-- name: UpsertRepository :one
INSERT INTO repositories (
    github_repo_id, owner, name, full_name, url, language,
    stars_count, forks_count, open_issues_count, commit_count, repo_created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (github_repo_id) DO UPDATE
SET owner = EXCLUDED.owner,
    name = EXCLUDED.name,
    full_name = EXCLUDED.full_name,
    url = EXCLUDED.url,
    language = EXCLUDED.language,
    stars_count = EXCLUDED.stars_count,
    forks_count = EXCLUDED.forks_count,
    open_issues_count = EXCLUDED.open_issues_count,
    commit_count = EXCLUDED.commit_count,
    repo_created_at = EXCLUDED.repo_created_at,
    fetched_at = NOW()
RETURNING id, github_repo_id, owner, name, full_name, url, language,
    stars_count, forks_count, open_issues_count, commit_count, repo_created_at, fetched_at
`

type UpsertRepositoryParams struct {
	GithubRepoID    int64
	Owner           string
	Name            string
	FullName        string
	Url             string
	Language        pgtype.Text
	StarsCount      int32
	ForksCount      int32
	OpenIssuesCount int32
	CommitCount     int32
	RepoCreatedAt   pgtype.Timestamptz
}

func (q *Queries) UpsertRepository(ctx context.Context, arg UpsertRepositoryParams) (Repository, error) {
	row := q.db.QueryRow(ctx, upsertRepository,
		arg.GithubRepoID,
		arg.Owner,
		arg.Name,
		arg.FullName,
		arg.Url,
		arg.Language,
		arg.StarsCount,
		arg.ForksCount,
		arg.OpenIssuesCount,
		arg.CommitCount,
		arg.RepoCreatedAt,
	)
	var i Repository
	err := row.Scan(
		&i.ID,
		&i.GithubRepoID,
		&i.Owner,
		&i.Name,
		&i.FullName,
		&i.Url,
		&i.Language,
		&i.StarsCount,
		&i.ForksCount,
		&i.OpenIssuesCount,
		&i.CommitCount,
		&i.RepoCreatedAt,
		&i.FetchedAt,
	)
	return i, err
}
