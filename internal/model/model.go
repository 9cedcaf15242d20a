// Package model contains the data shapes returned by the API.
// These are plain structs; persistence records and their mapping live in the postgres package.
package model

import "time"

// PullRequest is a pull request row enriched with its owning repository's name.
type PullRequest struct {
	ID          int64      `json:"id"`
	RepoID      int64      `json:"repo_id"`
	FullName    string     `json:"full_name"`
	Number      int        `json:"number"`
	Title       string     `json:"title"`
	State       string     `json:"state"`
	Draft       bool       `json:"draft"`
	Merged      bool       `json:"merged"`
	AuthorLogin string     `json:"author_login"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ClosedAt    *time.Time `json:"closed_at"`
	MergedAt    *time.Time `json:"merged_at"`
}

// PullRequestContributor is an aggregated row: one author and the latest activity seen
// for them in the queried window.
type PullRequestContributor struct {
	AuthorLogin string    `json:"author_login"`
	UpdatedAt   time.Time `json:"updated_at"`
}
