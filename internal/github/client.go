// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"github-repo-insights/internal/model"
)

const (
	// maxRetries is the total number of attempts made for one API call.
	maxRetries = 3

	defaultRetryDelay   = 500 * time.Millisecond
	maxRateLimitWait    = 15 * time.Minute
	searchPerPageMax    = 100
	commitsPerPage      = 50
	forksPerPage        = 100
	issuesPerPage       = 100
	forksSortNewest     = "newest"
	searchSortStars     = "stars"
	searchOrderDesc     = "desc"
	issueStateOpen      = "open"
	defaultUserAgentStr = "github-repo-insights/1.0"
)

// Options tunes the client. Zero values select the defaults.
type Options struct {
	BaseURL   string
	UserAgent string
}

// Client is a wrapper around the go-github client.
type Client struct {
	gh         *github.Client
	logger     *slog.Logger
	retryDelay time.Duration
}

// NewClient creates and configures a new Client instance.
// A non-empty token is sent as a bearer credential on every request.
func NewClient(token string, logger *slog.Logger, opts Options) (*Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		if err := setBaseURL(gh, opts.BaseURL); err != nil {
			return nil, err
		}
	}
	gh.UserAgent = defaultUserAgentStr
	if opts.UserAgent != "" {
		gh.UserAgent = opts.UserAgent
	}

	return &Client{
		gh:         gh,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}, nil
}

func setBaseURL(gh *github.Client, raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid GitHub API base url %q: %w", raw, err)
	}
	gh.BaseURL = u
	return nil
}

// SearchTop returns the most starred repositories for a language, in
// descending star order.
func (c *Client) SearchTop(ctx context.Context, language string, limit int) ([]model.Repository, error) {
	limit = min(max(limit, 1), searchPerPageMax)
	opts := &github.SearchOptions{
		Sort:  searchSortStars,
		Order: searchOrderDesc,
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: limit,
		},
	}

	var result *github.RepositoriesSearchResult
	err := c.withRetry(ctx, "search", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		result, resp, err = c.gh.Search.Repositories(ctx, "language:"+language, opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	repos := make([]model.Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, model.Repository{RepositoryInfo: toInternalRepositoryInfo(r)})
	}
	return repos, nil
}

// ListForks returns the first page of forks, newest first.
func (c *Client) ListForks(ctx context.Context, owner, name string) ([]model.RepositoryInfo, error) {
	opts := &github.RepositoryListForksOptions{
		Sort:        forksSortNewest,
		ListOptions: github.ListOptions{Page: 1, PerPage: forksPerPage},
	}

	var forks []*github.Repository
	err := c.withRetry(ctx, "list forks", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		forks, resp, err = c.gh.Repositories.ListForks(ctx, owner, name, opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.RepositoryInfo, 0, len(forks))
	for _, f := range forks {
		out = append(out, toInternalRepositoryInfo(f))
	}
	return out, nil
}

// ListRecentCommits returns the first page of commits, newest first.
// The returned commits carry no file changes.
func (c *Client) ListRecentCommits(ctx context.Context, owner, name string) ([]model.Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{Page: 1, PerPage: commitsPerPage},
	}

	var commits []*github.RepositoryCommit
	err := c.withRetry(ctx, "list commits", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		commits, resp, err = c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Commit, 0, len(commits))
	for _, commit := range commits {
		out = append(out, toInternalCommit(commit))
	}
	return out, nil
}

// GetCommitDetail fetches a single commit including its file changes.
func (c *Client) GetCommitDetail(ctx context.Context, owner, name, sha string) (model.Commit, error) {
	var commit *github.RepositoryCommit
	err := c.withRetry(ctx, "get commit", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		commit, resp, err = c.gh.Repositories.GetCommit(ctx, owner, name, sha, nil)
		return resp, err
	})
	if err != nil {
		return model.Commit{}, err
	}
	return toInternalCommit(commit), nil
}

// ListOpenIssues returns the first page of open issues. Pull requests, which
// the issues endpoint also returns, are dropped.
func (c *Client) ListOpenIssues(ctx context.Context, owner, name string) ([]model.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       issueStateOpen,
		ListOptions: github.ListOptions{Page: 1, PerPage: issuesPerPage},
	}

	var issues []*github.Issue
	err := c.withRetry(ctx, "list issues", func() (*github.Response, error) {
		var (
			resp *github.Response
			err  error
		)
		issues, resp, err = c.gh.Issues.ListByRepo(ctx, owner, name, opts)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		out = append(out, toInternalIssue(issue))
	}
	return out, nil
}

// withRetry runs call up to maxRetries times. Server errors are retried with
// exponential backoff, rate limit errors wait until the limit resets.
func (c *Client) withRetry(ctx context.Context, op string, call func() (*github.Response, error)) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		_, err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		wait, retryable := c.backoff(err, delay)
		if !retryable || attempt == maxRetries {
			break
		}
		c.logger.Debug("Retrying GitHub request", "op", op, "attempt", attempt, "wait", wait.String(), "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return lastErr
}

func (c *Client) backoff(err error, delay time.Duration) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := time.Until(rateErr.Rate.Reset.Time)
		if wait > maxRateLimitWait {
			return 0, false
		}
		c.logger.Warn("GitHub rate limit hit, waiting for reset", "reset", rateErr.Rate.Reset.Time)
		return max(wait, 0), true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil {
			return *abuseErr.RetryAfter, true
		}
		return delay, true
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return delay, respErr.Response.StatusCode >= http.StatusInternalServerError
	}
	return 0, false
}

// toInternalRepositoryInfo translates a github.Repository object to our internal model.
func toInternalRepositoryInfo(r *github.Repository) model.RepositoryInfo {
	info := model.RepositoryInfo{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		URL:             r.GetHTMLURL(),
		StarsCount:      r.GetStargazersCount(),
		ForksCount:      r.GetForksCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		Language:        r.Language,
		Owner: model.Owner{
			Login: r.GetOwner().GetLogin(),
			ID:    r.GetOwner().GetID(),
			URL:   r.GetOwner().GetHTMLURL(),
		},
		HasIssues: r.HasIssues == nil || r.GetHasIssues(),
	}
	if r.CreatedAt != nil {
		created := r.CreatedAt.Time
		info.CreatedAt = &created
	}
	return info
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	commit := model.Commit{
		SHA:     c.GetSHA(),
		Message: c.GetCommit().GetMessage(),
		URL:     c.GetHTMLURL(),
	}

	if a := c.GetCommit().GetAuthor(); a != nil {
		author := &model.CommitAuthor{
			Name:  a.GetName(),
			Email: a.GetEmail(),
		}
		if a.Date != nil {
			date := a.Date.Time
			author.Date = &date
		}
		commit.Author = author
	}

	for _, f := range c.Files {
		commit.Files = append(commit.Files, model.FileChange{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Changes:   f.GetChanges(),
			Status:    f.GetStatus(),
		})
	}
	return commit
}

func toInternalIssue(i *github.Issue) model.Issue {
	return model.Issue{
		ID:        i.GetID(),
		Number:    i.GetNumber(),
		Title:     i.GetTitle(),
		Body:      i.GetBody(),
		State:     i.GetState(),
		URL:       i.GetHTMLURL(),
		CreatedAt: i.GetCreatedAt().Time,
		UpdatedAt: i.GetUpdatedAt().Time,
	}
}
