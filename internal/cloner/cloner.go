// internal/cloner/cloner.go
package cloner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// tokenUser is the basic-auth username GitHub expects alongside a token.
const tokenUser = "x-access-token"

type Options struct {
	// BaseURL is prefixed to "<slug>.git" to form the clone URL.
	BaseURL string
	// Depth is the number of commits fetched. Zero clones the full history.
	Depth int
	// Token authenticates HTTP clones when set.
	Token string
}

// Cloner checks out repositories into local working trees.
type Cloner struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Cloner {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	return &Cloner{opts: opts, logger: logger}
}

// URL returns the clone URL for an "owner/name" slug.
func (c *Cloner) URL(slug string) string {
	return fmt.Sprintf("%s/%s.git", c.opts.BaseURL, slug)
}

// Clone fetches slug into dest, replacing anything already there.
func (c *Cloner) Clone(ctx context.Context, slug, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clearing %s: %w", dest, err)
	}

	opts := &git.CloneOptions{
		URL:          c.URL(slug),
		Depth:        c.opts.Depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if c.opts.Token != "" && strings.HasPrefix(opts.URL, "http") {
		opts.Auth = &githttp.BasicAuth{Username: tokenUser, Password: c.opts.Token}
	}

	c.logger.Info("Cloning repository", "repo", slug, "dest", dest, "depth", c.opts.Depth)
	if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
		// A failed clone can leave a partial tree behind.
		_ = os.RemoveAll(dest)
		return fmt.Errorf("cloning %s: %w", slug, err)
	}
	return nil
}

// Remove deletes a working tree. A missing path is not an error.
func (c *Cloner) Remove(dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("removing %s: %w", dest, err)
	}
	return nil
}
