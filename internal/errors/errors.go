// internal/errors/errors.go
package errors

import "fmt"

// ErrLanguageFetch is returned when the top-repository search for a language
// fails. The caller skips that language and moves on to the next one.
type ErrLanguageFetch struct {
	Language string
	Err      error
}

func (e *ErrLanguageFetch) Error() string {
	return fmt.Sprintf("fetching top repositories for %q: %v", e.Language, e.Err)
}

func (e *ErrLanguageFetch) Unwrap() error { return e.Err }

// ErrUnitFetch describes a single degraded enrichment call. It is logged and
// never returned from the fetcher.
type ErrUnitFetch struct {
	Phase  string
	Target string
	Err    error
}

func (e *ErrUnitFetch) Error() string {
	return fmt.Sprintf("%s for %s: %v", e.Phase, e.Target, e.Err)
}

func (e *ErrUnitFetch) Unwrap() error { return e.Err }

// ErrClone is returned when a candidate cannot be cloned or classified.
type ErrClone struct {
	Slug string
	Err  error
}

func (e *ErrClone) Error() string {
	return fmt.Sprintf("inspecting %s: %v", e.Slug, e.Err)
}

func (e *ErrClone) Unwrap() error { return e.Err }

// ErrStore is returned when persisting a finished record fails.
type ErrStore struct {
	Op  string
	Key string
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *ErrStore) Unwrap() error { return e.Err }

// ErrInvalidConfig is returned when a configuration field is missing or out of range.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}
