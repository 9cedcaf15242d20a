package querybuilder

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Query is an immutable SELECT builder. Every method returns a new Query, so a filtered
// base can be shared between its count and page variants.
type Query struct {
	b sq.SelectBuilder
}

// Select starts a query projecting the given columns. Raw expressions such as
// "MAX(pull_requests.updated_at) AS updated_at" are accepted as columns.
func Select(columns ...string) Query {
	return Query{b: sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select(columns...)}
}

func (q Query) Columns(columns ...string) Query {
	return Query{b: q.b.Columns(columns...)}
}

func (q Query) Distinct() Query {
	return Query{b: q.b.Distinct()}
}

func (q Query) From(table string) Query {
	return Query{b: q.b.From(table)}
}

// FromSubquery uses sub as the FROM source under alias. Parameters of sub stay bound
// and are renumbered together with the outer query.
func (q Query) FromSubquery(sub Query, alias string) Query {
	return Query{b: q.b.FromSelect(sub.AsSubquery(), alias)}
}

// Join adds an INNER JOIN; clause is "table [alias] ON condition".
func (q Query) Join(clause string) Query {
	return Query{b: q.b.Join(clause)}
}

// LeftJoinSubquery adds LEFT JOIN (sub) AS alias ON on.
func (q Query) LeftJoinSubquery(sub Query, alias, on string) Query {
	return Query{b: q.b.JoinClause(sq.Expr(fmt.Sprintf("LEFT JOIN (?) AS %s ON %s", alias, on), sub.AsSubquery()))}
}

// Where ANDs a single predicate onto the query.
func (q Query) Where(p Predicate) Query {
	return Query{b: q.b.Where(p)}
}

func (q Query) GroupBy(exprs ...string) Query {
	return Query{b: q.b.GroupBy(exprs...)}
}

// OrderBy appends ORDER BY terms after any existing ones.
func (q Query) OrderBy(terms ...string) Query {
	return Query{b: q.b.OrderBy(terms...)}
}

// Paginate sets LIMIT and OFFSET.
func (q Query) Paginate(limit, offset int) Query {
	if limit < 0 {
		limit = 0
	}
	if offset < 0 {
		offset = 0
	}
	return Query{b: q.b.Limit(uint64(limit)).Offset(uint64(offset))}
}

// AsSubquery returns the builder in raw '?' form for embedding into another statement.
func (q Query) AsSubquery() sq.SelectBuilder {
	return q.b.PlaceholderFormat(sq.Question)
}

// Count wraps q into SELECT COUNT(*) FROM (q) AS subquery_for_count. It works for both
// entity rows and grouped / DISTINCT rows. q must not carry LIMIT/OFFSET.
func (q Query) Count() Query {
	return Select("COUNT(*)").FromSubquery(q, "subquery_for_count")
}

// ToSql renders the statement with $n placeholders.
func (q Query) ToSql() (string, []any, error) {
	return q.b.PlaceholderFormat(sq.Dollar).ToSql()
}

// Apply applies filters in order: the first becomes the WHERE clause, every next one is ANDed.
func Apply(q Query, filters Filters) Query {
	for _, f := range filters {
		q = q.Where(f)
	}
	return q
}
