package database

import (
	"context"
)

type Querier interface {
	CreateIssues(ctx context.Context, arg []CreateIssuesParams) (int64, error)
	DeleteIssuesByRepoID(ctx context.Context, repositoryID int64) error
	GetIssuesByRepoID(ctx context.Context, repositoryID int64) ([]Issue, error)
	GetLanguageReport(ctx context.Context, language string) (LanguageReport, error)
	GetRepositoryByOwnerAndName(ctx context.Context, arg GetRepositoryByOwnerAndNameParams) (Repository, error)
	UpsertAuthor(ctx context.Context, arg UpsertAuthorParams) error
	UpsertLanguageReport(ctx context.Context, arg UpsertLanguageReportParams) error
	UpsertRepository(ctx context.Context, arg UpsertRepositoryParams) (Repository, error)
}

var _ Querier = (*Queries)(nil)
