package postgres

import (
	"net/url"
	"strings"

	qb "github.com/maxviazov/pr-insights-service/internal/querybuilder"
	"github.com/maxviazov/pr-insights-service/internal/repository"
)

// Predicate templates. Every value is bound, including the day windows.
const (
	condRepoName    = `LOWER("repos"."full_name") = :repo`
	condRepoIDs     = `"repos"."id" = ANY(:repoIds)`
	condUpdatedIn   = `now() - make_interval(days => :range) <= "pull_requests"."updated_at"`
	condContributor = `LOWER("pull_requests"."author_login") = :contributor`
	condStatus      = `LOWER("pull_requests"."state") = :status`
)

// normalizeLogin URL-decodes then lowercases; undecodable input is compared as-is.
func normalizeLogin(s string) string {
	s = strings.TrimSpace(s)
	if dec, err := url.PathUnescape(s); err == nil {
		s = dec
	}
	return strings.ToLower(s)
}

// repoFilters covers the repository-scoped part of a request.
func repoFilters(q repository.PullRequestQuery) qb.Filters {
	var f qb.Filters
	if q.Repo != "" {
		f = f.Add(condRepoName, map[string]any{"repo": normalizeLogin(q.Repo)})
	}
	if len(q.RepoIDs) > 0 {
		f = f.Add(condRepoIDs, map[string]any{"repoIds": q.RepoIDs})
	}
	return f
}

func updatedWithin(days int) qb.Predicate {
	return qb.P(condUpdatedIn, map[string]any{"range": days})
}

func contributorIs(login string) qb.Predicate {
	return qb.P(condContributor, map[string]any{"contributor": normalizeLogin(login)})
}

// pullRequestFilters appends one predicate per present field, in a fixed order:
// repo, repoIds, range, contributor, status.
func pullRequestFilters(q repository.PullRequestQuery) qb.Filters {
	f := repoFilters(q)
	f = append(f, updatedWithin(q.Range))
	if q.Contributor != "" {
		f = append(f, contributorIs(q.Contributor))
	}
	if q.Status != "" {
		f = f.Add(condStatus, map[string]any{"status": strings.ToLower(strings.TrimSpace(q.Status))})
	}
	return f
}

// contributorFilters is the filter set of the contributor aggregation: repo scope and window.
func contributorFilters(q repository.PullRequestQuery) qb.Filters {
	return append(repoFilters(q), updatedWithin(q.Range))
}
