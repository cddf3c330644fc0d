package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded

	cases := []error{
		&ErrLanguageFetch{Language: "Rust", Err: cause},
		&ErrUnitFetch{Phase: "list issues", Target: "o/r", Err: cause},
		&ErrClone{Slug: "o/r", Err: cause},
		&ErrStore{Op: "persist report", Key: "rust", Err: cause},
	}
	for _, err := range cases {
		wrapped := fmt.Errorf("outer: %w", err)
		assert.ErrorIs(t, wrapped, context.DeadlineExceeded, err.Error())
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("run failed: %w", &ErrStore{Op: "persist repository", Key: "repo:o:r", Err: stderrors.New("boom")})

	var storeErr *ErrStore
	assert.True(t, stderrors.As(err, &storeErr))
	assert.Equal(t, "repo:o:r", storeErr.Key)
	assert.Equal(t, "store persist repository repo:o:r: boom", storeErr.Error())
}

func TestMessages(t *testing.T) {
	assert.Equal(t, `fetching top repositories for "C++": 422`, (&ErrLanguageFetch{Language: "C++", Err: stderrors.New("422")}).Error())
	assert.Equal(t, "list forks for o/r: timeout", (&ErrUnitFetch{Phase: "list forks", Target: "o/r", Err: stderrors.New("timeout")}).Error())
	assert.Equal(t, "invalid configuration TOP_N: must be between 1 and 100", (&ErrInvalidConfig{Field: "TOP_N", Reason: "must be between 1 and 100"}).Error())
}
