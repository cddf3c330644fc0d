// internal/store/pgstore/pgstore.go
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-repo-insights/internal/database"
	custom_errors "github-repo-insights/internal/errors"
	"github-repo-insights/internal/model"
	"github-repo-insights/internal/store"
)

// Store persists results in PostgreSQL through the generated queries.
type Store struct {
	dbpool  *pgxpool.Pool
	queries database.Querier
	logger  *slog.Logger
}

var _ store.Store = (*Store)(nil)

// New creates a Store on top of an open pool. The schema must already be
// migrated.
func New(dbpool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{
		dbpool:  dbpool,
		queries: database.New(dbpool),
		logger:  logger,
	}
}

// PersistRepository writes the owner, the repository and its issues in one
// transaction. Previously stored issues of the repository are replaced.
func (s *Store) PersistRepository(ctx context.Context, repo *model.Repository) error {
	key := repo.Slug()
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return &custom_errors.ErrStore{Op: "begin", Key: key, Err: err}
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction is already committed.

	if err := s.persistRepository(ctx, database.New(tx), repo); err != nil {
		return &custom_errors.ErrStore{Op: "persist repository", Key: key, Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &custom_errors.ErrStore{Op: "commit", Key: key, Err: err}
	}
	return nil
}

func (s *Store) persistRepository(ctx context.Context, q database.Querier, repo *model.Repository) error {
	logger := s.logger.With("owner", repo.Owner.Login, "repo", repo.Name)

	err := q.UpsertAuthor(ctx, database.UpsertAuthorParams{
		Login:    repo.Owner.Login,
		GithubID: repo.Owner.ID,
		Url:      repo.Owner.URL,
	})
	if err != nil {
		return err
	}

	dbRepo, err := q.UpsertRepository(ctx, database.UpsertRepositoryParams{
		GithubRepoID:    repo.ID,
		Owner:           repo.Owner.Login,
		Name:            repo.Name,
		FullName:        repo.FullName,
		Url:             repo.URL,
		Language:        toPgText(repo.Language),
		StarsCount:      int32(repo.StarsCount),
		ForksCount:      int32(repo.ForksCount),
		OpenIssuesCount: int32(repo.OpenIssuesCount),
		CommitCount:     int32(repo.CommitCount),
		RepoCreatedAt:   toPgTimestamp(repo.CreatedAt),
	})
	if err != nil {
		return err
	}
	logger = logger.With("repo_id", dbRepo.ID)

	if err := q.DeleteIssuesByRepoID(ctx, dbRepo.ID); err != nil {
		return err
	}
	if len(repo.Issues) == 0 {
		logger.Info("Stored repository without open issues")
		return nil
	}

	n, err := q.CreateIssues(ctx, prepareIssueBulkInsert(dbRepo.ID, repo.Issues))
	if err != nil {
		return err
	}
	logger.Info("Stored repository", "issues", n)
	return nil
}

func (s *Store) PersistReport(ctx context.Context, report *model.LanguageReport) error {
	key := store.LanguageKey(report.Language)
	payload, err := json.Marshal(report)
	if err != nil {
		return &custom_errors.ErrStore{Op: "encode report", Key: key, Err: err}
	}

	err = s.queries.UpsertLanguageReport(ctx, database.UpsertLanguageReportParams{
		Language:    key,
		RunID:       pgtype.UUID{Bytes: report.RunID, Valid: true},
		GeneratedAt: pgtype.Timestamptz{Time: report.GeneratedAt, Valid: !report.GeneratedAt.IsZero()},
		Report:      payload,
	})
	if err != nil {
		return &custom_errors.ErrStore{Op: "persist report", Key: key, Err: err}
	}

	s.logger.Info("Stored report", "language", key, "run_id", report.RunID)
	return nil
}

func (s *Store) GetReport(ctx context.Context, language string) (*model.LanguageReport, error) {
	key := store.LanguageKey(language)
	row, err := s.queries.GetLanguageReport(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, &custom_errors.ErrStore{Op: "get report", Key: key, Err: err}
	}

	var report model.LanguageReport
	if err := json.Unmarshal(row.Report, &report); err != nil {
		return nil, &custom_errors.ErrStore{Op: "decode report", Key: key, Err: err}
	}
	return &report, nil
}

func prepareIssueBulkInsert(repoID int64, issues []model.Issue) []database.CreateIssuesParams {
	params := make([]database.CreateIssuesParams, len(issues))
	for i, issue := range issues {
		params[i] = database.CreateIssuesParams{
			RepositoryID:   repoID,
			Position:       int32(i),
			GithubIssueID:  issue.ID,
			Number:         int32(issue.Number),
			Title:          issue.Title,
			Body:           issue.Body,
			State:          issue.State,
			Url:            issue.URL,
			IssueCreatedAt: pgtype.Timestamptz{Time: issue.CreatedAt, Valid: true},
			IssueUpdatedAt: pgtype.Timestamptz{Time: issue.UpdatedAt, Valid: true},
		}
	}
	return params
}

func toPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{
		String: *s,
		Valid:  *s != "",
	}
}

func toPgTimestamp(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
