package postgres

import (
	"time"

	"github.com/maxviazov/pr-insights-service/internal/model"
)

// pullRequestRecord mirrors the projection of pullRequestColumns one to one.
type pullRequestRecord struct {
	ID          int64      `db:"id"`
	RepoID      int64      `db:"repo_id"`
	FullName    string     `db:"full_name"`
	Number      int        `db:"number"`
	Title       string     `db:"title"`
	State       string     `db:"state"`
	Draft       bool       `db:"draft"`
	Merged      bool       `db:"merged"`
	AuthorLogin string     `db:"author_login"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	ClosedAt    *time.Time `db:"closed_at"`
	MergedAt    *time.Time `db:"merged_at"`
}

var pullRequestColumns = []string{
	`"pull_requests"."id" AS id`,
	`"pull_requests"."repo_id" AS repo_id`,
	`"repos"."full_name" AS full_name`,
	`"pull_requests"."number" AS number`,
	`"pull_requests"."title" AS title`,
	`"pull_requests"."state" AS state`,
	`"pull_requests"."draft" AS draft`,
	`"pull_requests"."merged" AS merged`,
	`"pull_requests"."author_login" AS author_login`,
	`"pull_requests"."created_at" AS created_at`,
	`"pull_requests"."updated_at" AS updated_at`,
	`"pull_requests"."closed_at" AS closed_at`,
	`"pull_requests"."merged_at" AS merged_at`,
}

func toPullRequest(r pullRequestRecord) model.PullRequest {
	return model.PullRequest{
		ID:          r.ID,
		RepoID:      r.RepoID,
		FullName:    r.FullName,
		Number:      r.Number,
		Title:       r.Title,
		State:       r.State,
		Draft:       r.Draft,
		Merged:      r.Merged,
		AuthorLogin: r.AuthorLogin,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		ClosedAt:    r.ClosedAt,
		MergedAt:    r.MergedAt,
	}
}

type contributorRecord struct {
	AuthorLogin string    `db:"author_login"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func toContributor(r contributorRecord) model.PullRequestContributor {
	return model.PullRequestContributor{AuthorLogin: r.AuthorLogin, UpdatedAt: r.UpdatedAt}
}
