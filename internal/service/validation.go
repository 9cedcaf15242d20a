package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/maxviazov/pr-insights-service/internal/repository"
)

// PageParams is the page request shared by every listing. Nil means "use the default".
type PageParams struct {
	Page  *int `form:"page" validate:"omitempty,min=1"`
	Limit *int `form:"limit" validate:"omitempty,min=1,max=10000"`
	Range *int `form:"range" validate:"omitempty,min=1,max=366"`
}

// SearchParams carries the optional listing filters. RepoIDs is the raw comma separated list.
type SearchParams struct {
	PageParams
	Repo        string `form:"repo" validate:"omitempty,max=200"`
	RepoIDs     string `form:"repoIds" validate:"omitempty,max=2000"`
	Contributor string `form:"contributor" validate:"omitempty,max=100"`
	Status      string `form:"status" validate:"omitempty,oneof=open closed"`
	Filter      string `form:"filter" validate:"omitempty,oneof=recent"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their query parameter name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func fieldErrorsFrom(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be >= " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("length must be <= %s", fe.Param())
		}
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func pageOptions(p PageParams) repository.PageOptions {
	return repository.PageOptions{
		Page:  lo.FromPtrOr(p.Page, repository.DefaultPage),
		Limit: lo.FromPtrOr(p.Limit, repository.DefaultLimit),
		Range: lo.FromPtrOr(p.Range, repository.DefaultRange),
	}
}

// parseRepoIDs turns "1, 2,,2" into [1 2]. Blank items are skipped and duplicates dropped.
func parseRepoIDs(raw string) ([]int64, error) {
	parts := lo.Compact(lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%q is not a positive integer", p)
		}
		ids = append(ids, id)
	}
	return lo.Uniq(ids), nil
}

func decodable(s string) bool {
	_, err := url.PathUnescape(s)
	return err == nil
}

// checkPage validates p alone.
func checkPage(p PageParams) []FieldError {
	if err := validate.Struct(p); err != nil {
		return fieldErrorsFrom(err)
	}
	return nil
}

// buildQuery validates and normalises p into a repository query, aggregating every field error.
func buildQuery(p SearchParams) (repository.PullRequestQuery, error) {
	p.Repo = strings.TrimSpace(p.Repo)
	p.Contributor = strings.TrimSpace(p.Contributor)
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	p.Filter = strings.ToLower(strings.TrimSpace(p.Filter))

	var ferrs []FieldError
	if err := validate.Struct(p); err != nil {
		ferrs = append(ferrs, fieldErrorsFrom(err)...)
	}
	if !decodable(p.Repo) {
		ferrs = append(ferrs, FieldError{Field: "repo", Message: "must be valid URL encoding"})
	}
	if !decodable(p.Contributor) {
		ferrs = append(ferrs, FieldError{Field: "contributor", Message: "must be valid URL encoding"})
	}
	ids, err := parseRepoIDs(p.RepoIDs)
	if err != nil {
		ferrs = append(ferrs, FieldError{Field: "repoIds", Message: "must be a comma separated list of positive integers: " + err.Error()})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return repository.PullRequestQuery{}, err
	}

	q := repository.PullRequestQuery{
		PageOptions: pageOptions(p.PageParams),
		Repo:        p.Repo,
		Contributor: p.Contributor,
		Status:      p.Status,
		Filter:      p.Filter,
	}
	if len(ids) > 0 {
		q.RepoIDs = ids
	}
	return q, nil
}
