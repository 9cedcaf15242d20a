package response_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/pr-insights-service/internal/repository"
	"github.com/maxviazov/pr-insights-service/internal/service"
	"github.com/maxviazov/pr-insights-service/pkg/response"
)

// fakeInvalid mimics service aggregated validation error to test mapping without reaching into internals.
type fakeInvalid struct{ fe []service.FieldError }

func (f *fakeInvalid) Error() string                { return service.ErrInvalidInput.Error() }
func (f *fakeInvalid) Unwrap() error                { return service.ErrInvalidInput }
func (f *fakeInvalid) Fields() []service.FieldError { return f.fe }

func TestMapError(t *testing.T) {
	cases := []struct {
		name     string
		in       error
		wantCode int
		wantErr  string
	}{
		{"invalid_input", &fakeInvalid{fe: []service.FieldError{{Field: "limit", Message: "bad"}}}, 400, "invalid_input"},
		{"missing_filter", repository.MissingFilter("repoIds"), 400, "missing_required_filter"},
		{"not_found", repository.ErrNotFound, 404, "not_found"},
		{"unavailable", fmt.Errorf("%w: %w", repository.ErrUnavailable, errors.New("dial tcp")), 503, "unavailable"},
		{"data_access", fmt.Errorf("%w: 42703: %w", repository.ErrDataAccess, errors.New("column does not exist")), 500, "data_access"},
		{"timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), 504, "timeout"},
		{"internal", errors.New("boom"), 500, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, payload := response.MapError(tc.in)
			assert.Equal(t, tc.wantCode, code)
			assert.Equal(t, tc.wantErr, payload.Error)
			if tc.wantErr == "invalid_input" {
				assert.NotEmpty(t, payload.FieldErrors)
			}
		})
	}
}

func TestMapError_MissingFilterNamesField(t *testing.T) {
	_, payload := response.MapError(fmt.Errorf("find new contributors: %w", repository.MissingFilter("repoIds")))
	assert.Equal(t, "missing required filter: repoIds", payload.Message)
}

func TestMapError_DoesNotLeakStoreDetails(t *testing.T) {
	_, payload := response.MapError(fmt.Errorf("%w: %w", repository.ErrDataAccess, errors.New(`relation "secret" does not exist`)))
	assert.NotContains(t, payload.Message, "secret")
}
