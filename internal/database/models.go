package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Author struct {
	Login    string
	GithubID int64
	Url      string
}

type Issue struct {
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

type LanguageReport struct {
	Language    string
	RunID       pgtype.UUID
	GeneratedAt pgtype.Timestamptz
	Report      []byte
}

type Repository struct {
	ID              int64
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
	FetchedAt       pgtype.Timestamptz
}
