// Package service holds use-case orchestration between handlers and repositories.
// Kept lean: request validation, normalisation and domain error shaping only.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/pr-insights-service/internal/model"
	"github.com/maxviazov/pr-insights-service/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// InvalidQuery wraps a query-string binding failure (e.g. page=abc) as invalid input.
func InvalidQuery(err error) error {
	return newInvalidInput([]FieldError{{Field: "query", Message: err.Error()}})
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// PullRequestService defines the listing use cases. Every method validates and defaults its
// params before touching storage; invalid params never reach the repository.
type PullRequestService interface {
	ListPullRequests(ctx context.Context, p PageParams) (repository.Page[model.PullRequest], error)
	ListByContributor(ctx context.Context, username string, p PageParams) (repository.Page[model.PullRequest], error)
	SearchPullRequests(ctx context.Context, p SearchParams) (repository.Page[model.PullRequest], error)
	SearchContributors(ctx context.Context, p SearchParams) (repository.Page[model.PullRequestContributor], error)
	// NewContributors requires p.RepoIDs; without it the repository answers ErrMissingFilter.
	NewContributors(ctx context.Context, p SearchParams) (repository.Page[model.PullRequestContributor], error)
}
