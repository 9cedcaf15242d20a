package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/pr-insights-service/internal/config"
)

func TestPageOptions_Skip(t *testing.T) {
	assert.Equal(t, 0, PageOptions{Page: 1, Limit: 10}.Skip())
	assert.Equal(t, 40, PageOptions{Page: 5, Limit: 10}.Skip())
	assert.Equal(t, 0, PageOptions{Page: 0, Limit: 10}.Skip())
}

func TestNewPageMeta(t *testing.T) {
	cases := []struct {
		name  string
		count int64
		opts  PageOptions
		want  PageMeta
	}{
		{"empty", 0, PageOptions{Page: 1, Limit: 10}, PageMeta{Page: 1, Limit: 10}},
		{"exact", 20, PageOptions{Page: 1, Limit: 10}, PageMeta{Page: 1, Limit: 10, ItemCount: 20, PageCount: 2, HasNextPage: true}},
		{"partial last", 21, PageOptions{Page: 3, Limit: 10}, PageMeta{Page: 3, Limit: 10, ItemCount: 21, PageCount: 3, HasPreviousPage: true}},
		{"past the end", 5, PageOptions{Page: 4, Limit: 10}, PageMeta{Page: 4, Limit: 10, ItemCount: 5, PageCount: 1, HasPreviousPage: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewPageMeta(tc.count, tc.opts))
		})
	}
}

func TestNewPage_NilDataEncodesAsEmpty(t *testing.T) {
	p := NewPage[int](nil, 0, PageOptions{Page: 1, Limit: 10})
	assert.NotNil(t, p.Data)
	assert.Empty(t, p.Data)
}

func TestMapPgError(t *testing.T) {
	syntax := &pgconn.PgError{Code: pgerrcode.SyntaxError, Message: "syntax error"}
	adminShutdown := &pgconn.PgError{Code: pgerrcode.AdminShutdown}
	connFailure := &pgconn.PgError{Code: pgerrcode.ConnectionFailure}

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"syntax error", syntax, ErrDataAccess},
		{"wrapped syntax error", fmt.Errorf("query: %w", syntax), ErrDataAccess},
		{"admin shutdown", adminShutdown, ErrUnavailable},
		{"connection failure", connFailure, ErrUnavailable},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, ErrUnavailable},
		{"unknown", errors.New("boom"), ErrDataAccess},
		{"deadline", context.DeadlineExceeded, context.DeadlineExceeded},
		{"missing filter", MissingFilter("repoIds"), ErrMissingFilter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapPgError(tc.in)
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.in, "original error must stay in the chain")
		})
	}
	assert.NoError(t, MapPgError(nil))
}

func TestMapPgError_IsIdempotent(t *testing.T) {
	once := MapPgError(errors.New("boom"))
	assert.Equal(t, once, MapPgError(once))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestDSN(t *testing.T) {
	dsn := DSN(config.PostgresConfig{
		Host: "db", Port: 5433, User: "app", Password: "p@ss/word", DBName: "prs", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5433/prs?sslmode=disable", dsn)
}
