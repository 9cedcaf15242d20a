package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/pr-insights-service/internal/model"
	"github.com/maxviazov/pr-insights-service/internal/repository"
)

type pullRequestService struct {
	repo repository.PullRequestRepository
	log  zerolog.Logger
}

func NewPullRequestService(repo repository.PullRequestRepository, logger zerolog.Logger) PullRequestService {
	l := logger.With().Str("module", "service").Str("component", "pull_request").Logger()
	return &pullRequestService{repo: repo, log: l}
}

func (s *pullRequestService) ListPullRequests(ctx context.Context, p PageParams) (repository.Page[model.PullRequest], error) {
	if err := newInvalidInput(checkPage(p)); err != nil {
		s.logInvalid(err, "list pull requests")
		return repository.Page[model.PullRequest]{}, err
	}
	opts := pageOptions(p)
	start := time.Now()
	out, err := s.repo.FindAll(ctx, opts)
	if err != nil {
		s.log.Error().Err(err).Int("page", opts.Page).Int("limit", opts.Limit).Msg("list pull requests failed")
		return repository.Page[model.PullRequest]{}, err
	}
	s.log.Debug().Dur("took", time.Since(start)).Int64("items", out.Meta.ItemCount).Msg("pull requests listed")
	return out, nil
}

func (s *pullRequestService) ListByContributor(ctx context.Context, username string, p PageParams) (repository.Page[model.PullRequest], error) {
	username = strings.TrimSpace(username)
	ferrs := checkPage(p)
	switch {
	case username == "":
		ferrs = append(ferrs, FieldError{Field: "username", Message: "must not be empty"})
	case len(username) > 100:
		ferrs = append(ferrs, FieldError{Field: "username", Message: "length must be <= 100"})
	case !decodable(username):
		ferrs = append(ferrs, FieldError{Field: "username", Message: "must be valid URL encoding"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		s.logInvalid(err, "list by contributor")
		return repository.Page[model.PullRequest]{}, err
	}

	opts := pageOptions(p)
	out, err := s.repo.FindAllByContributor(ctx, username, opts)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Int("range", opts.Range).Msg("list by contributor failed")
		return repository.Page[model.PullRequest]{}, err
	}
	return out, nil
}

func (s *pullRequestService) SearchPullRequests(ctx context.Context, p SearchParams) (repository.Page[model.PullRequest], error) {
	q, err := buildQuery(p)
	if err != nil {
		s.logInvalid(err, "search pull requests")
		return repository.Page[model.PullRequest]{}, err
	}
	out, err := s.repo.FindAllWithFilters(ctx, q)
	if err != nil {
		s.queryFailed(err, q, "search pull requests failed")
		return repository.Page[model.PullRequest]{}, err
	}
	return out, nil
}

func (s *pullRequestService) SearchContributors(ctx context.Context, p SearchParams) (repository.Page[model.PullRequestContributor], error) {
	q, err := buildQuery(p)
	if err != nil {
		s.logInvalid(err, "search contributors")
		return repository.Page[model.PullRequestContributor]{}, err
	}
	out, err := s.repo.FindAllContributors(ctx, q)
	if err != nil {
		s.queryFailed(err, q, "search contributors failed")
		return repository.Page[model.PullRequestContributor]{}, err
	}
	return out, nil
}

func (s *pullRequestService) NewContributors(ctx context.Context, p SearchParams) (repository.Page[model.PullRequestContributor], error) {
	q, err := buildQuery(p)
	if err != nil {
		s.logInvalid(err, "new contributors")
		return repository.Page[model.PullRequestContributor]{}, err
	}
	start := time.Now()
	out, err := s.repo.FindNewContributors(ctx, q)
	if err != nil {
		s.queryFailed(err, q, "new contributors failed")
		return repository.Page[model.PullRequestContributor]{}, err
	}
	s.log.Debug().Dur("took", time.Since(start)).Ints64("repo_ids", q.RepoIDs).Int("range", q.Range).
		Int64("items", out.Meta.ItemCount).Msg("new contributors computed")
	return out, nil
}

func (s *pullRequestService) logInvalid(err error, op string) {
	s.log.Debug().Interface("field_errors", FieldErrors(err)).Str("op", op).Msg("validation failed")
}

// queryFailed logs client-caused errors at warn and store failures at error.
func (s *pullRequestService) queryFailed(err error, q repository.PullRequestQuery, msg string) {
	ev := s.log.Error()
	if isClientError(err) {
		ev = s.log.Warn()
	}
	ev.Err(err).
		Int("page", q.Page).
		Int("limit", q.Limit).
		Int("range", q.Range).
		Ints64("repo_ids", q.RepoIDs).
		Msg(msg)
}

func isClientError(err error) bool {
	return errors.Is(err, repository.ErrMissingFilter) || errors.Is(err, ErrInvalidInput)
}
