package querybuilder_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qb "github.com/maxviazov/pr-insights-service/internal/querybuilder"
)

func TestPredicate_ToSql_BindsNamedParams(t *testing.T) {
	p := qb.P(`LOWER("pull_requests"."author_login") = :contributor AND "repos"."id" = ANY(:repoIds)`,
		map[string]any{"contributor": "octocat", "repoIds": []int64{1, 2}})

	sql, args, err := p.ToSql()
	require.NoError(t, err)
	assert.Equal(t, `LOWER("pull_requests"."author_login") = ? AND "repos"."id" = ANY(?)`, sql)
	assert.Equal(t, []any{"octocat", []int64{1, 2}}, args)
}

func TestPredicate_ToSql_SkipsCastsAndLiterals(t *testing.T) {
	p := qb.P(`"updated_at"::date < now() - INTERVAL '1 day' AND state = ':open' AND n = :n`,
		map[string]any{"n": 3})

	sql, args, err := p.ToSql()
	require.NoError(t, err)
	assert.Equal(t, `"updated_at"::date < now() - INTERVAL '1 day' AND state = ':open' AND n = ?`, sql)
	assert.Equal(t, []any{3}, args)
}

func TestPredicate_ToSql_RepeatedName(t *testing.T) {
	p := qb.P(`a >= :d AND b < :d`, map[string]any{"d": 7})
	sql, args, err := p.ToSql()
	require.NoError(t, err)
	assert.Equal(t, `a >= ? AND b < ?`, sql)
	assert.Equal(t, []any{7, 7}, args)
}

func TestPredicate_ToSql_UnboundParam(t *testing.T) {
	_, _, err := qb.P(`author_login = :login`, nil).ToSql()
	require.Error(t, err)
	assert.True(t, errors.Is(err, qb.ErrUnboundParam))
}

func TestPredicate_ToSql_UnterminatedQuote(t *testing.T) {
	_, _, err := qb.P(`state = 'open`, nil).ToSql()
	require.Error(t, err)
}

func TestApply_KeepsInsertionOrder(t *testing.T) {
	var f qb.Filters
	f = f.Add(`a = :a`, map[string]any{"a": 1})
	f = f.Add(`b = :b`, map[string]any{"b": "x"})
	f = f.Add(`c IS NULL`, nil)

	sql, args, err := qb.Apply(qb.Select("id").From("t"), f).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t WHERE a = $1 AND b = $2 AND c IS NULL", sql)
	assert.Equal(t, []any{1, "x"}, args)
}

func TestApply_EmptyFiltersHasNoWhere(t *testing.T) {
	sql, args, err := qb.Apply(qb.Select("id").From("t"), nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t", sql)
	assert.Empty(t, args)
}

func TestAnd(t *testing.T) {
	assert.Nil(t, qb.And())

	sql, args, err := qb.And(qb.P(`a = :a`, map[string]any{"a": 1}), qb.P(`b = :b`, map[string]any{"b": 2})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(a = ? AND b = ?)", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestQuery_CountWrapsFilteredQuery(t *testing.T) {
	base := qb.Select("author_login", "MAX(updated_at) AS updated_at").
		From("pull_requests").
		Where(qb.P(`repo_id = ANY(:ids)`, map[string]any{"ids": []int64{1}})).
		GroupBy("author_login")

	sql, args, err := base.Count().ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM (SELECT author_login, MAX(updated_at) AS updated_at FROM pull_requests WHERE repo_id = ANY($1) GROUP BY author_login) AS subquery_for_count",
		sql)
	assert.Equal(t, []any{[]int64{1}}, args)
}

func TestQuery_PaginateAndOrder(t *testing.T) {
	sql, _, err := qb.Select("id").From("t").OrderBy("updated_at DESC", "id DESC").Paginate(10, 20).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t ORDER BY updated_at DESC, id DESC LIMIT 10 OFFSET 20", sql)
}

func TestQuery_SubqueriesRenumberParams(t *testing.T) {
	older := qb.Select("author_login").From("pull_requests").Where(qb.P(`x = :x`, map[string]any{"x": 1}))
	newer := qb.Select("author_login").From("pull_requests").Where(qb.P(`y = :y`, map[string]any{"y": 2}))

	sql, args, err := qb.Select("o.author_login").
		FromSubquery(older, "o").
		LeftJoinSubquery(newer, "n", "o.author_login = n.author_login").
		Where(qb.P(`n.author_login IS NULL AND o.z = :z`, map[string]any{"z": 3})).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT o.author_login FROM (SELECT author_login FROM pull_requests WHERE x = $1) AS o "+
			"LEFT JOIN (SELECT author_login FROM pull_requests WHERE y = $2) AS n ON o.author_login = n.author_login "+
			"WHERE n.author_login IS NULL AND o.z = $3",
		sql)
	assert.Equal(t, []any{1, 2, 3}, args)
}

func TestQuery_IsImmutable(t *testing.T) {
	base := qb.Select("id").From("t")
	_ = base.Where(qb.P(`a = :a`, map[string]any{"a": 1}))

	sql, _, err := base.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM t", sql)
}
