package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/pr-insights-service/internal/model"
	qb "github.com/maxviazov/pr-insights-service/internal/querybuilder"
	"github.com/maxviazov/pr-insights-service/internal/repository"
)

const (
	tablePullRequests = `pull_requests`
	joinRepos         = `repos ON "pull_requests"."repo_id" = "repos"."id"`

	orderPullRequestRecency = `"pull_requests"."updated_at" DESC`
	orderPullRequestID      = `"pull_requests"."id" DESC`
	orderRepoRecency        = `"repos"."updated_at" DESC`
	orderActivity           = `updated_at DESC`
	orderLogin              = `author_login ASC`
)

type pullRequestRepository struct{ pool *pgxpool.Pool }

func NewPullRequestRepository(pool *pgxpool.Pool) repository.PullRequestRepository {
	return &pullRequestRepository{pool: pool}
}

// pullRequestsQuery is the entity listing source: pull requests joined to their repository
// so every row carries the denormalised repo id and name.
func pullRequestsQuery() qb.Query {
	return qb.Select(pullRequestColumns...).From(tablePullRequests).Join(joinRepos)
}

func (r *pullRequestRepository) FindAll(ctx context.Context, opts repository.PageOptions) (repository.Page[model.PullRequest], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[model.PullRequest]{}, err
	}
	return paginate(ctx, r.pool, pageSpec{
		base:  pullRequestsQuery(),
		order: []string{orderPullRequestRecency, orderPullRequestID},
		opts:  opts,
	}, toPullRequest)
}

func (r *pullRequestRepository) FindAllByContributor(ctx context.Context, contributor string, opts repository.PageOptions) (repository.Page[model.PullRequest], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[model.PullRequest]{}, err
	}
	return paginate(ctx, r.pool, byContributorSpec(contributor, opts), toPullRequest)
}

func byContributorSpec(contributor string, opts repository.PageOptions) pageSpec {
	filters := qb.Filters{contributorIs(contributor), updatedWithin(opts.Range)}
	return pageSpec{
		base:  qb.Apply(pullRequestsQuery(), filters),
		order: []string{orderPullRequestRecency, orderPullRequestID},
		opts:  opts,
	}
}

func (r *pullRequestRepository) FindAllWithFilters(ctx context.Context, q repository.PullRequestQuery) (repository.Page[model.PullRequest], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[model.PullRequest]{}, err
	}
	return paginate(ctx, r.pool, withFiltersSpec(q), toPullRequest)
}

func withFiltersSpec(q repository.PullRequestQuery) pageSpec {
	order := []string{orderPullRequestRecency, orderPullRequestID}
	if q.Filter == repository.FilterRecent {
		order = append([]string{orderRepoRecency}, order...)
	}
	return pageSpec{
		base:  qb.Apply(pullRequestsQuery(), pullRequestFilters(q)),
		order: order,
		opts:  q.PageOptions,
	}
}

func (r *pullRequestRepository) FindAllContributors(ctx context.Context, q repository.PullRequestQuery) (repository.Page[model.PullRequestContributor], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[model.PullRequestContributor]{}, err
	}
	return paginate(ctx, r.pool, contributorsSpec(q), toContributor)
}

// contributorsSpec groups the filtered pull requests by author; the page counts authors,
// not pull requests, because the count wraps the grouped query.
func contributorsSpec(q repository.PullRequestQuery) pageSpec {
	base := qb.Select(
		`"pull_requests"."author_login" AS author_login`,
		`MAX("pull_requests"."updated_at") AS updated_at`,
	).
		From(tablePullRequests).
		Join(joinRepos).
		GroupBy(`"pull_requests"."author_login"`)

	return pageSpec{
		base:  qb.Apply(base, contributorFilters(q)),
		order: []string{orderActivity, orderLogin},
		opts:  q.PageOptions,
	}
}

func (r *pullRequestRepository) FindNewContributors(ctx context.Context, q repository.PullRequestQuery) (repository.Page[model.PullRequestContributor], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.Page[model.PullRequestContributor]{}, err
	}
	base, err := newContributorsQuery(q)
	if err != nil {
		return repository.Page[model.PullRequestContributor]{}, err
	}
	return paginate(ctx, r.pool, pageSpec{
		base:  base,
		order: []string{orderActivity, orderLogin},
		opts:  q.PageOptions,
	}, toContributor)
}

// newContributorsQuery returns authors active in [now-2*range, now-range) that have no
// activity in [now-range, now), as a left anti-join on author_login. Both windows are
// scoped to q.RepoIDs and skip empty logins. Lower bounds are inclusive, upper bounds exclusive.
func newContributorsQuery(q repository.PullRequestQuery) (qb.Query, error) {
	if len(q.RepoIDs) == 0 {
		return qb.Query{}, repository.MissingFilter("repoIds")
	}
	scope := qb.Filters{
		qb.P(`"pull_requests"."author_login" != ''`, nil),
		qb.P(condRepoIDs, map[string]any{"repoIds": q.RepoIDs}),
	}

	older := qb.Apply(
		qb.Select(
			`"pull_requests"."author_login" AS author_login`,
			`MAX("pull_requests"."updated_at") AS updated_at`,
		).From(tablePullRequests).Join(joinRepos),
		append(qb.Filters{
			qb.P(`"pull_requests"."updated_at" >= now() - make_interval(days => :from)`, map[string]any{"from": 2 * q.Range}),
			qb.P(`"pull_requests"."updated_at" < now() - make_interval(days => :to)`, map[string]any{"to": q.Range}),
		}, scope...),
	).GroupBy(`"pull_requests"."author_login"`)

	newer := qb.Apply(
		qb.Select(`"pull_requests"."author_login" AS author_login`).
			Distinct().
			From(tablePullRequests).
			Join(joinRepos),
		append(qb.Filters{
			qb.P(`"pull_requests"."updated_at" >= now() - make_interval(days => :from)`, map[string]any{"from": q.Range}),
			qb.P(`"pull_requests"."updated_at" < now()`, nil),
		}, scope...),
	)

	return qb.Select(
		`previous_month.author_login AS author_login`,
		`previous_month.updated_at AS updated_at`,
	).
		FromSubquery(older, "previous_month").
		LeftJoinSubquery(newer, "current_month", "previous_month.author_login = current_month.author_login").
		Where(qb.P(`current_month.author_login IS NULL`, nil)), nil
}

var _ repository.PullRequestRepository = (*pullRequestRepository)(nil)
