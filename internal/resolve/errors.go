package resolve

import (
	"context"
	"errors"
	"fmt"

	"discordcore/pkg/domain"
	"discordcore/pkg/platform/sentinel"
)

// Category is the normalized failure taxonomy shared by fetchers and the context.
type Category string

const (
	// CategoryNotFound means the upstream confirmed the entity does not exist.
	CategoryNotFound Category = "not_found"
	// CategoryTimeout means the upstream took too long to respond.
	CategoryTimeout Category = "timeout"
	// CategoryRateLimited means the upstream refused the request for rate limits.
	CategoryRateLimited Category = "rate_limited"
	// CategoryUnavailable means the upstream is down or returned a server error.
	CategoryUnavailable Category = "unavailable"
	// CategoryBadData means the upstream returned a payload that does not decode.
	CategoryBadData Category = "bad_data"
	// CategoryInternal covers everything else.
	CategoryInternal Category = "internal"
)

// Retryable reports whether a failure of this category may succeed if retried.
func (c Category) Retryable() bool {
	return c == CategoryTimeout || c == CategoryRateLimited || c == CategoryUnavailable
}

func (c Category) sentinel() error {
	switch c {
	case CategoryNotFound:
		return sentinel.ErrNotFound
	case CategoryTimeout:
		return sentinel.ErrTimeout
	case CategoryRateLimited:
		return sentinel.ErrRateLimited
	case CategoryUnavailable:
		return sentinel.ErrUnavailable
	case CategoryBadData:
		return sentinel.ErrBadData
	}
	return nil
}

// FetchError is what fetchers return so the context can classify failures.
type FetchError struct {
	Category Category
	Message  string
	Err      error
}

// NewFetchError builds a categorized fetcher error.
func NewFetchError(category Category, message string, err error) *FetchError {
	return &FetchError{Category: category, Message: message, Err: err}
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch [%s]: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch [%s]: %s", e.Category, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	s := e.Category.sentinel()
	return s != nil && target == s
}

// ResolutionFailure is returned when an identifier could not be resolved.
// Failures are never cached: resolving the same key again issues a new fetch.
type ResolutionFailure struct {
	Kind      domain.Kind
	ID        domain.Snowflake
	Category  Category
	Retryable bool
	Err       error
}

func newFailure(kind domain.Kind, id domain.Snowflake, err error) *ResolutionFailure {
	category := CategoryInternal
	var fe *FetchError
	switch {
	case errors.As(err, &fe):
		category = fe.Category
	case errors.Is(err, context.DeadlineExceeded):
		category = CategoryTimeout
	}
	return &ResolutionFailure{
		Kind:      kind,
		ID:        id,
		Category:  category,
		Retryable: category.Retryable(),
		Err:       err,
	}
}

func (e *ResolutionFailure) Error() string {
	return fmt.Sprintf("resolve %s %s [%s]: %v", e.Kind, e.ID, e.Category, e.Err)
}

func (e *ResolutionFailure) Unwrap() error {
	return e.Err
}

func (e *ResolutionFailure) Is(target error) bool {
	s := e.Category.sentinel()
	return s != nil && target == s
}

// IsNotFound reports whether err is a confirmed absence.
func IsNotFound(err error) bool {
	var rf *ResolutionFailure
	if errors.As(err, &rf) {
		return rf.Category == CategoryNotFound
	}
	return errors.Is(err, sentinel.ErrNotFound)
}

// IsRetryable reports whether err is a resolution failure worth retrying.
func IsRetryable(err error) bool {
	var rf *ResolutionFailure
	if errors.As(err, &rf) {
		return rf.Retryable
	}
	return false
}

// GetCategory extracts the failure category, CategoryInternal when unknown.
func GetCategory(err error) Category {
	var rf *ResolutionFailure
	if errors.As(err, &rf) {
		return rf.Category
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return CategoryInternal
}

// ErrInvalidRequest is returned for lookups that can never succeed, before any I/O.
var ErrInvalidRequest = errors.New("invalid resolve request")
