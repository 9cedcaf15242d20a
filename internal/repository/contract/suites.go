package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/pr-insights-service/internal/repository"
)

type SeedRepo struct {
	ID        int64
	FullName  string
	UpdatedAt time.Time
}

type SeedPullRequest struct {
	ID          int64
	RepoID      int64
	Number      int
	State       string
	AuthorLogin string
	UpdatedAt   time.Time
}

// Seeder writes fixtures straight into the store under test.
type Seeder interface {
	Repo(ctx context.Context, r SeedRepo) error
	PullRequest(ctx context.Context, pr SeedPullRequest) error
}

type PullRequestFactory func(t *testing.T) (repo repository.PullRequestRepository, seed Seeder, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func daysAgo(d int) time.Time { return time.Now().UTC().Add(-time.Duration(d) * 24 * time.Hour) }

func opts(page, limit, rng int) repository.PageOptions {
	return repository.PageOptions{Page: page, Limit: limit, Range: rng}
}

func mustSeed(t *testing.T, seed Seeder, repos []SeedRepo, prs []SeedPullRequest) {
	t.Helper()
	ctx := context.Background()
	for _, r := range repos {
		if err := seed.Repo(ctx, r); err != nil {
			t.Fatalf("seed repo %d: %v", r.ID, err)
		}
	}
	for _, pr := range prs {
		if pr.State == "" {
			pr.State = "open"
		}
		if pr.Number == 0 {
			pr.Number = int(pr.ID)
		}
		if err := seed.PullRequest(ctx, pr); err != nil {
			t.Fatalf("seed pull request %d: %v", pr.ID, err)
		}
	}
}

func RunPullRequestRepositoryContract(t *testing.T, makeRepo PullRequestFactory) {
	t.Helper()

	t.Run("find_all_pagination_meta", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		prs := make([]SeedPullRequest, 0, 7)
		for i := 1; i <= 7; i++ {
			prs = append(prs, SeedPullRequest{ID: int64(i), RepoID: 1, AuthorLogin: "dev", UpdatedAt: daysAgo(i)})
		}
		mustSeed(t, seed, []SeedRepo{{ID: 1, FullName: "acme/api", UpdatedAt: daysAgo(1)}}, prs)

		page, err := repo.FindAll(context.Background(), opts(3, 3, 30))
		if err != nil {
			t.Fatalf("find all: %v", err)
		}
		if len(page.Data) != 1 {
			t.Fatalf("expected 1 row on the last page, got %d", len(page.Data))
		}
		m := page.Meta
		if m.ItemCount != 7 || m.PageCount != 3 || !m.HasPreviousPage || m.HasNextPage {
			t.Fatalf("unexpected meta: %+v", m)
		}
		if page.Data[0].ID != 7 || page.Data[0].FullName != "acme/api" {
			t.Fatalf("expected the oldest pull request joined with its repo, got %+v", page.Data[0])
		}
	})

	t.Run("contributor_case_insensitive", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		mustSeed(t, seed,
			[]SeedRepo{{ID: 1, FullName: "acme/api", UpdatedAt: daysAgo(1)}},
			[]SeedPullRequest{
				{ID: 1, RepoID: 1, AuthorLogin: "Octocat", UpdatedAt: daysAgo(2)},
				{ID: 2, RepoID: 1, AuthorLogin: "someone", UpdatedAt: daysAgo(2)},
				{ID: 3, RepoID: 1, AuthorLogin: "octocat", UpdatedAt: daysAgo(90)},
			})

		for _, login := range []string{"octocat", "OCTOCAT", "Octo%63at"} {
			page, err := repo.FindAllByContributor(context.Background(), login, opts(1, 10, 30))
			if err != nil {
				t.Fatalf("by contributor %q: %v", login, err)
			}
			if page.Meta.ItemCount != 1 || len(page.Data) != 1 || page.Data[0].ID != 1 {
				t.Fatalf("%q: expected only pull request 1 inside the window, got %+v", login, page)
			}
		}
	})

	t.Run("filters_only_narrow", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		mustSeed(t, seed,
			[]SeedRepo{
				{ID: 1, FullName: "acme/api", UpdatedAt: daysAgo(1)},
				{ID: 2, FullName: "acme/web", UpdatedAt: daysAgo(1)},
			},
			[]SeedPullRequest{
				{ID: 1, RepoID: 1, AuthorLogin: "a", State: "open", UpdatedAt: daysAgo(1)},
				{ID: 2, RepoID: 1, AuthorLogin: "b", State: "closed", UpdatedAt: daysAgo(2)},
				{ID: 3, RepoID: 2, AuthorLogin: "a", State: "open", UpdatedAt: daysAgo(3)},
			})
		ctx := context.Background()

		all, err := repo.FindAllWithFilters(ctx, repository.PullRequestQuery{PageOptions: opts(1, 10, 30)})
		if err != nil {
			t.Fatalf("unfiltered: %v", err)
		}
		open, err := repo.FindAllWithFilters(ctx, repository.PullRequestQuery{PageOptions: opts(1, 10, 30), Status: "OPEN"})
		if err != nil {
			t.Fatalf("status filter: %v", err)
		}
		scoped, err := repo.FindAllWithFilters(ctx, repository.PullRequestQuery{
			PageOptions: opts(1, 10, 30), Status: "open", Repo: "ACME%2Fapi", RepoIDs: []int64{1, 2},
		})
		if err != nil {
			t.Fatalf("scoped filter: %v", err)
		}
		if all.Meta.ItemCount != 3 || open.Meta.ItemCount != 2 || scoped.Meta.ItemCount != 1 {
			t.Fatalf("expected 3 >= 2 >= 1, got %d, %d, %d", all.Meta.ItemCount, open.Meta.ItemCount, scoped.Meta.ItemCount)
		}
		if scoped.Data[0].ID != 1 {
			t.Fatalf("expected pull request 1, got %+v", scoped.Data[0])
		}
	})

	t.Run("recent_orders_by_repo_first", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		mustSeed(t, seed,
			[]SeedRepo{
				{ID: 1, FullName: "acme/stale", UpdatedAt: daysAgo(20)},
				{ID: 2, FullName: "acme/fresh", UpdatedAt: daysAgo(1)},
			},
			[]SeedPullRequest{
				{ID: 1, RepoID: 1, AuthorLogin: "a", UpdatedAt: daysAgo(1)},
				{ID: 2, RepoID: 2, AuthorLogin: "a", UpdatedAt: daysAgo(5)},
			})
		ctx := context.Background()

		byPR, err := repo.FindAllWithFilters(ctx, repository.PullRequestQuery{PageOptions: opts(1, 10, 30)})
		if err != nil {
			t.Fatalf("default order: %v", err)
		}
		byRepo, err := repo.FindAllWithFilters(ctx, repository.PullRequestQuery{PageOptions: opts(1, 10, 30), Filter: repository.FilterRecent})
		if err != nil {
			t.Fatalf("recent order: %v", err)
		}
		if byPR.Data[0].ID != 1 || byRepo.Data[0].ID != 2 {
			t.Fatalf("unexpected order: default=%d recent=%d", byPR.Data[0].ID, byRepo.Data[0].ID)
		}
	})

	t.Run("contributors_grouped_with_latest_activity", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		mustSeed(t, seed,
			[]SeedRepo{{ID: 1, FullName: "acme/api", UpdatedAt: daysAgo(1)}},
			[]SeedPullRequest{
				{ID: 1, RepoID: 1, AuthorLogin: "busy", UpdatedAt: daysAgo(9)},
				{ID: 2, RepoID: 1, AuthorLogin: "busy", UpdatedAt: daysAgo(2)},
				{ID: 3, RepoID: 1, AuthorLogin: "busy", UpdatedAt: daysAgo(5)},
				{ID: 4, RepoID: 1, AuthorLogin: "quiet", UpdatedAt: daysAgo(7)},
			})

		page, err := repo.FindAllContributors(context.Background(), repository.PullRequestQuery{PageOptions: opts(1, 1, 30)})
		if err != nil {
			t.Fatalf("contributors: %v", err)
		}
		if page.Meta.ItemCount != 2 || page.Meta.PageCount != 2 {
			t.Fatalf("expected two distinct authors, got %+v", page.Meta)
		}
		got := page.Data[0]
		if got.AuthorLogin != "busy" || got.UpdatedAt.Before(daysAgo(3)) {
			t.Fatalf("expected busy with the most recent activity first, got %+v", got)
		}
	})

	t.Run("new_contributors_cohort", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		mustSeed(t, seed,
			[]SeedRepo{
				{ID: 1, FullName: "acme/api", UpdatedAt: daysAgo(1)},
				{ID: 2, FullName: "acme/web", UpdatedAt: daysAgo(1)},
				{ID: 3, FullName: "other/lib", UpdatedAt: daysAgo(1)},
			},
			[]SeedPullRequest{
				{ID: 1, RepoID: 1, AuthorLogin: "new-dev", UpdatedAt: daysAgo(45)},
				{ID: 2, RepoID: 1, AuthorLogin: "steady-dev", UpdatedAt: daysAgo(45)},
				{ID: 3, RepoID: 2, AuthorLogin: "steady-dev", UpdatedAt: daysAgo(10)},
				{ID: 4, RepoID: 2, AuthorLogin: "late-dev", UpdatedAt: daysAgo(10)},
				{ID: 5, RepoID: 3, AuthorLogin: "elsewhere", UpdatedAt: daysAgo(45)},
				{ID: 6, RepoID: 1, AuthorLogin: "", UpdatedAt: daysAgo(45)},
				{ID: 7, RepoID: 2, AuthorLogin: "ancient", UpdatedAt: daysAgo(75)},
			})
		q := repository.PullRequestQuery{PageOptions: opts(1, 10, 30), RepoIDs: []int64{1, 2}}

		first, err := repo.FindNewContributors(context.Background(), q)
		if err != nil {
			t.Fatalf("new contributors: %v", err)
		}
		if first.Meta.ItemCount != 1 || len(first.Data) != 1 || first.Data[0].AuthorLogin != "new-dev" {
			t.Fatalf("expected only new-dev, got %+v", first)
		}

		second, err := repo.FindNewContributors(context.Background(), q)
		if err != nil {
			t.Fatalf("repeat: %v", err)
		}
		if second.Meta != first.Meta || second.Data[0].AuthorLogin != first.Data[0].AuthorLogin {
			t.Fatalf("repeated request differs: %+v vs %+v", first, second)
		}
	})

	t.Run("new_contributors_requires_repo_ids", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.FindNewContributors(context.Background(), repository.PullRequestQuery{PageOptions: opts(1, 10, 30)})
		if !errors.Is(err, repository.ErrMissingFilter) {
			t.Fatalf("expected ErrMissingFilter, got %v", err)
		}
	})

	t.Run("count_ignores_limit", func(t *testing.T) {
		repo, seed, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ts := daysAgo(1)
		prs := make([]SeedPullRequest, 0, 5)
		for i := 1; i <= 5; i++ {
			prs = append(prs, SeedPullRequest{ID: int64(i), RepoID: 1, AuthorLogin: "dev", UpdatedAt: ts})
		}
		mustSeed(t, seed, []SeedRepo{{ID: 1, FullName: "acme/api", UpdatedAt: daysAgo(1)}}, prs)

		a, err := repo.FindAll(context.Background(), opts(1, 2, 30))
		if err != nil {
			t.Fatalf("limit 2: %v", err)
		}
		b, err := repo.FindAll(context.Background(), opts(1, 100, 30))
		if err != nil {
			t.Fatalf("limit 100: %v", err)
		}
		if a.Meta.ItemCount != 5 || b.Meta.ItemCount != 5 || len(a.Data) != 2 || len(b.Data) != 5 {
			t.Fatalf("unexpected counts: %+v / %+v", a.Meta, b.Meta)
		}
		// equal updated_at falls back to id DESC
		if a.Data[0].ID != 5 || a.Data[1].ID != 4 {
			t.Fatalf("expected id tie-breaker, got %d, %d", a.Data[0].ID, a.Data[1].ID)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
