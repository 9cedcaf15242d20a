package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/pr-insights-service/internal/model"
	"github.com/maxviazov/pr-insights-service/internal/repository"
	"github.com/maxviazov/pr-insights-service/internal/service"
)

type fakePullRequestRepo struct {
	calls     int
	lastOpts  repository.PageOptions
	lastLogin string
	lastQuery repository.PullRequestQuery
	err       error
}

func (f *fakePullRequestRepo) FindAll(_ context.Context, opts repository.PageOptions) (repository.Page[model.PullRequest], error) {
	f.calls++
	f.lastOpts = opts
	if f.err != nil {
		return repository.Page[model.PullRequest]{}, f.err
	}
	return repository.NewPage([]model.PullRequest{{ID: 1}}, 1, opts), nil
}

func (f *fakePullRequestRepo) FindAllByContributor(_ context.Context, login string, opts repository.PageOptions) (repository.Page[model.PullRequest], error) {
	f.calls++
	f.lastLogin = login
	f.lastOpts = opts
	return repository.NewPage[model.PullRequest](nil, 0, opts), f.err
}

func (f *fakePullRequestRepo) FindAllWithFilters(_ context.Context, q repository.PullRequestQuery) (repository.Page[model.PullRequest], error) {
	f.calls++
	f.lastQuery = q
	return repository.NewPage[model.PullRequest](nil, 0, q.PageOptions), f.err
}

func (f *fakePullRequestRepo) FindAllContributors(_ context.Context, q repository.PullRequestQuery) (repository.Page[model.PullRequestContributor], error) {
	f.calls++
	f.lastQuery = q
	return repository.NewPage[model.PullRequestContributor](nil, 0, q.PageOptions), f.err
}

func (f *fakePullRequestRepo) FindNewContributors(_ context.Context, q repository.PullRequestQuery) (repository.Page[model.PullRequestContributor], error) {
	f.calls++
	f.lastQuery = q
	if len(q.RepoIDs) == 0 {
		return repository.Page[model.PullRequestContributor]{}, repository.MissingFilter("repoIds")
	}
	return repository.NewPage([]model.PullRequestContributor{{AuthorLogin: "new-dev"}}, 1, q.PageOptions), f.err
}

var _ repository.PullRequestRepository = (*fakePullRequestRepo)(nil)

func newService(repo *fakePullRequestRepo) service.PullRequestService {
	return service.NewPullRequestService(repo, zerolog.New(io.Discard))
}

func fieldNames(err error) []string {
	return lo.Map(service.FieldErrors(err), func(fe service.FieldError, _ int) string { return fe.Field })
}

func TestListPullRequests_Defaults(t *testing.T) {
	repo := &fakePullRequestRepo{}
	out, err := newService(repo).ListPullRequests(context.Background(), service.PageParams{})
	require.NoError(t, err)

	assert.Equal(t, repository.PageOptions{Page: 1, Limit: 10, Range: 30}, repo.lastOpts)
	assert.Equal(t, 0, repo.lastOpts.Skip())
	assert.Equal(t, int64(1), out.Meta.ItemCount)
}

func TestListPullRequests_PageBounds(t *testing.T) {
	cases := []struct {
		name   string
		params service.PageParams
		fields []string
	}{
		{"page zero", service.PageParams{Page: lo.ToPtr(0)}, []string{"page"}},
		{"limit zero", service.PageParams{Limit: lo.ToPtr(0)}, []string{"limit"}},
		{"limit too big", service.PageParams{Limit: lo.ToPtr(10001)}, []string{"limit"}},
		{"range too big", service.PageParams{Range: lo.ToPtr(367)}, []string{"range"}},
		{"all bad", service.PageParams{Page: lo.ToPtr(-1), Limit: lo.ToPtr(-1), Range: lo.ToPtr(0)}, []string{"page", "limit", "range"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakePullRequestRepo{}
			_, err := newService(repo).ListPullRequests(context.Background(), tc.params)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.ElementsMatch(t, tc.fields, fieldNames(err))
			assert.Zero(t, repo.calls, "invalid params must not reach the repository")
		})
	}
}

func TestListPullRequests_SkipFollowsPage(t *testing.T) {
	repo := &fakePullRequestRepo{}
	_, err := newService(repo).ListPullRequests(context.Background(), service.PageParams{Page: lo.ToPtr(4), Limit: lo.ToPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, 75, repo.lastOpts.Skip())
}

func TestListByContributor(t *testing.T) {
	repo := &fakePullRequestRepo{}
	svc := newService(repo)

	_, err := svc.ListByContributor(context.Background(), "  ", service.PageParams{})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, []string{"username"}, fieldNames(err))

	_, err = svc.ListByContributor(context.Background(), "octo%zz", service.PageParams{})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.ListByContributor(context.Background(), " Octocat ", service.PageParams{Range: lo.ToPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, "Octocat", repo.lastLogin)
	assert.Equal(t, 7, repo.lastOpts.Range)
}

func TestSearchPullRequests_Normalises(t *testing.T) {
	repo := &fakePullRequestRepo{}
	_, err := newService(repo).SearchPullRequests(context.Background(), service.SearchParams{
		Repo:        " acme/api ",
		RepoIDs:     "3, 1,,3",
		Contributor: "Octocat",
		Status:      "OPEN",
		Filter:      "Recent",
	})
	require.NoError(t, err)

	q := repo.lastQuery
	assert.Equal(t, "acme/api", q.Repo)
	assert.Equal(t, []int64{3, 1}, q.RepoIDs)
	assert.Equal(t, "open", q.Status)
	assert.Equal(t, repository.FilterRecent, q.Filter)
	assert.Equal(t, repository.PageOptions{Page: 1, Limit: 10, Range: 30}, q.PageOptions)
}

func TestSearchPullRequests_AggregatesFieldErrors(t *testing.T) {
	repo := &fakePullRequestRepo{}
	_, err := newService(repo).SearchPullRequests(context.Background(), service.SearchParams{
		PageParams:  service.PageParams{Limit: lo.ToPtr(0)},
		RepoIDs:     "1,abc",
		Status:      "draft",
		Filter:      "oldest",
		Contributor: "%zz",
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.ElementsMatch(t, []string{"limit", "status", "filter", "contributor", "repoIds"}, fieldNames(err))
	assert.Zero(t, repo.calls)
}

func TestSearchPullRequests_EmptyRepoIDsMeansNoFilter(t *testing.T) {
	repo := &fakePullRequestRepo{}
	_, err := newService(repo).SearchPullRequests(context.Background(), service.SearchParams{RepoIDs: " , "})
	require.NoError(t, err)
	assert.Nil(t, repo.lastQuery.RepoIDs)
}

func TestNewContributors(t *testing.T) {
	repo := &fakePullRequestRepo{}
	svc := newService(repo)

	_, err := svc.NewContributors(context.Background(), service.SearchParams{})
	require.ErrorIs(t, err, repository.ErrMissingFilter)
	assert.NotErrorIs(t, err, service.ErrInvalidInput)

	out, err := svc.NewContributors(context.Background(), service.SearchParams{RepoIDs: "1,2", PageParams: service.PageParams{Range: lo.ToPtr(30)}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, repo.lastQuery.RepoIDs)
	require.Len(t, out.Data, 1)
	assert.Equal(t, "new-dev", out.Data[0].AuthorLogin)
}

func TestRepositoryErrorsPassThrough(t *testing.T) {
	boom := errors.Join(repository.ErrUnavailable, errors.New("dial tcp: refused"))
	repo := &fakePullRequestRepo{err: boom}

	_, err := newService(repo).ListPullRequests(context.Background(), service.PageParams{})
	require.ErrorIs(t, err, repository.ErrUnavailable)
	assert.Empty(t, service.FieldErrors(err))
}
