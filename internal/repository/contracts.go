package repository

import (
	"context"

	"github.com/maxviazov/pr-insights-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ordering modes accepted by the pull request listings.
const (
	// FilterRecent orders by the owning repository's recency before pull request recency.
	FilterRecent = "recent"
)

// PullRequestQuery is a validated listing request. Empty strings and a nil RepoIDs mean
// "no filter" for that field. Contributor and Repo may still be URL-encoded; the storage
// layer decodes and case-folds them before comparing.
type PullRequestQuery struct {
	PageOptions
	Repo        string
	RepoIDs     []int64
	Contributor string
	Status      string
	Filter      string
}

// PullRequestRepository declares the paginated read paths over pull requests.
// Count and rows of a page come from two separate statements without a shared snapshot,
// so under concurrent writes ItemCount may disagree with Data by a few rows.
type PullRequestRepository interface {
	// FindAll lists every pull request, most recently updated first.
	FindAll(ctx context.Context, opts PageOptions) (Page[model.PullRequest], error)
	// FindAllByContributor lists one author's pull requests updated within opts.Range days.
	FindAllByContributor(ctx context.Context, contributor string, opts PageOptions) (Page[model.PullRequest], error)
	// FindAllWithFilters lists pull requests matching every present filter of q.
	FindAllWithFilters(ctx context.Context, q PullRequestQuery) (Page[model.PullRequest], error)
	// FindAllContributors lists distinct authors active in the window with their latest activity.
	FindAllContributors(ctx context.Context, q PullRequestQuery) (Page[model.PullRequestContributor], error)
	// FindNewContributors lists authors active in the older half of a 2*Range window
	// and absent from the newer half. q.RepoIDs is required.
	FindNewContributors(ctx context.Context, q PullRequestQuery) (Page[model.PullRequestContributor], error)
}
