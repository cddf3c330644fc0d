// Package redisstore persists results as Redis hashes, one per repository,
// owner and issue, plus a JSON document per language report.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	custom_errors "github-repo-insights/internal/errors"
	"github-repo-insights/internal/model"
	"github-repo-insights/internal/store"
)

type Store struct {
	client *redis.Client
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to the server at url (redis://host:port/db) and checks it
// answers.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func New(client *redis.Client, logger *slog.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func RepositoryKey(repo *model.Repository) string {
	return fmt.Sprintf("repo:%s:%s", repo.Owner.Login, repo.Name)
}

func AuthorKey(owner model.Owner) string {
	return "author:" + owner.Login
}

func IssueKey(repoID int64, idx int) string {
	return fmt.Sprintf("issue:%d:%d", repoID, idx)
}

func ReportKey(language string) string {
	return "report:" + store.LanguageKey(language)
}

// PersistRepository writes the repository, owner and issue hashes in a
// single pipeline round trip.
func (s *Store) PersistRepository(ctx context.Context, repo *model.Repository) error {
	key := RepositoryKey(repo)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, repositoryFields(repo))
		pipe.HSet(ctx, AuthorKey(repo.Owner), authorFields(repo.Owner))
		for i := range repo.Issues {
			pipe.HSet(ctx, IssueKey(repo.ID, i), issueFields(&repo.Issues[i]))
		}
		return nil
	})
	if err != nil {
		return &custom_errors.ErrStore{Op: "persist repository", Key: key, Err: err}
	}

	s.logger.Info("Stored repository", "key", key, "issues", len(repo.Issues))
	return nil
}

func (s *Store) PersistReport(ctx context.Context, report *model.LanguageReport) error {
	key := ReportKey(report.Language)
	payload, err := json.Marshal(report)
	if err != nil {
		return &custom_errors.ErrStore{Op: "encode report", Key: key, Err: err}
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return &custom_errors.ErrStore{Op: "persist report", Key: key, Err: err}
	}

	s.logger.Info("Stored report", "key", key, "run_id", report.RunID)
	return nil
}

func (s *Store) GetReport(ctx context.Context, language string) (*model.LanguageReport, error) {
	key := ReportKey(language)
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, &custom_errors.ErrStore{Op: "get report", Key: key, Err: err}
	}

	var report model.LanguageReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, &custom_errors.ErrStore{Op: "decode report", Key: key, Err: err}
	}
	return &report, nil
}

func repositoryFields(repo *model.Repository) map[string]interface{} {
	language := ""
	if repo.Language != nil {
		language = *repo.Language
	}
	return map[string]interface{}{
		"url":          repo.URL,
		"name":         repo.Name,
		"owner":        repo.Owner.Login,
		"language":     language,
		"stars":        repo.StarsCount,
		"forks":        repo.ForksCount,
		"open_issues":  repo.OpenIssuesCount,
		"full_name":    repo.FullName,
		"commit_count": repo.CommitCount,
		"issue_count":  len(repo.Issues),
	}
}

func authorFields(owner model.Owner) map[string]interface{} {
	return map[string]interface{}{
		"login": owner.Login,
		"id":    strconv.FormatInt(owner.ID, 10),
		"url":   owner.URL,
	}
}

func issueFields(issue *model.Issue) map[string]interface{} {
	return map[string]interface{}{
		"title":      issue.Title,
		"body":       issue.Body,
		"state":      issue.State,
		"url":        issue.URL,
		"created_at": issue.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": issue.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
