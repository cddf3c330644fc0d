package redisstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github-repo-insights/internal/model"
)

func sampleRepository() *model.Repository {
	lang := "Rust"
	return &model.Repository{
		RepositoryInfo: model.RepositoryInfo{
			ID:              42,
			Name:            "ripgrep",
			FullName:        "BurntSushi/ripgrep",
			URL:             "https://github.com/BurntSushi/ripgrep",
			StarsCount:      45000,
			ForksCount:      1900,
			OpenIssuesCount: 80,
			Language:        &lang,
			Owner:           model.Owner{Login: "BurntSushi", ID: 456, URL: "https://github.com/BurntSushi"},
		},
		CommitCount: 50,
		Issues: []model.Issue{
			{
				Title:     "crash on empty file",
				Body:      "steps...",
				State:     "open",
				URL:       "https://github.com/BurntSushi/ripgrep/issues/1",
				CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2024, 3, 2, 8, 30, 0, 0, time.FixedZone("CET", 3600)),
			},
		},
	}
}

func TestKeys(t *testing.T) {
	repo := sampleRepository()

	assert.Equal(t, "repo:BurntSushi:ripgrep", RepositoryKey(repo))
	assert.Equal(t, "author:BurntSushi", AuthorKey(repo.Owner))
	assert.Equal(t, "issue:42:0", IssueKey(repo.ID, 0))
	assert.Equal(t, "report:c++", ReportKey("C++"))
	assert.Equal(t, ReportKey("rust"), ReportKey(" Rust "))
}

func TestRepositoryFields(t *testing.T) {
	fields := repositoryFields(sampleRepository())

	assert.Equal(t, map[string]interface{}{
		"url":          "https://github.com/BurntSushi/ripgrep",
		"name":         "ripgrep",
		"owner":        "BurntSushi",
		"language":     "Rust",
		"stars":        45000,
		"forks":        1900,
		"open_issues":  80,
		"full_name":    "BurntSushi/ripgrep",
		"commit_count": 50,
		"issue_count":  1,
	}, fields)
}

func TestRepositoryFields_MissingLanguage(t *testing.T) {
	repo := sampleRepository()
	repo.Language = nil

	assert.Equal(t, "", repositoryFields(repo)["language"])
}

func TestAuthorAndIssueFields(t *testing.T) {
	repo := sampleRepository()

	assert.Equal(t, map[string]interface{}{
		"login": "BurntSushi",
		"id":    "456",
		"url":   "https://github.com/BurntSushi",
	}, authorFields(repo.Owner))

	issue := issueFields(&repo.Issues[0])
	assert.Equal(t, "crash on empty file", issue["title"])
	assert.Equal(t, "open", issue["state"])
	assert.Equal(t, "2024-03-01T12:00:00Z", issue["created_at"])
	assert.Equal(t, "2024-03-02T07:30:00Z", issue["updated_at"], "timestamps are stored in UTC")
}
