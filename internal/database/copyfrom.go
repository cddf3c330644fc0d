package database

import (
	"context"
)

// iteratorForCreateIssues implements pgx.CopyFromSource.
type iteratorForCreateIssues struct {
	rows                 []CreateIssuesParams
	skippedFirstNextCall bool
}

func (r *iteratorForCreateIssues) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForCreateIssues) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].RepositoryID,
		r.rows[0].Position,
		r.rows[0].GithubIssueID,
		r.rows[0].Number,
		r.rows[0].Title,
		r.rows[0].Body,
		r.rows[0].State,
		r.rows[0].Url,
		r.rows[0].IssueCreatedAt,
		r.rows[0].IssueUpdatedAt,
	}, nil
}

func (r iteratorForCreateIssues) Err() error {
	return nil
}

func (q *Queries) CreateIssues(ctx context.Context, arg []CreateIssuesParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"issues"}, []string{"repository_id", "position", "github_issue_id", "number", "title", "body", "state", "url", "issue_created_at", "issue_updated_at"}, &iteratorForCreateIssues{rows: arg})
}
