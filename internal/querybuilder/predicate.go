// Package querybuilder composes parameterised SELECT statements for the listing endpoints.
// Conditions are typed Predicate values with named parameters; they are bound, never interpolated.
package querybuilder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// ErrUnboundParam is returned when a condition references a :name with no value in Params.
var ErrUnboundParam = errors.New("unbound query parameter")

// Predicate is one SQL condition plus the values of its named parameters.
// Placeholders use the :name form, e.g. `LOWER("pull_requests"."author_login") = :contributor`.
type Predicate struct {
	Cond   string
	Params map[string]any
}

// P is a short constructor used by the filter builders.
func P(cond string, params map[string]any) Predicate {
	return Predicate{Cond: cond, Params: params}
}

// ToSql implements squirrel.Sqlizer. Named placeholders become '?' and values are
// appended in the order they appear in Cond.
func (p Predicate) ToSql() (string, []any, error) {
	var (
		b    strings.Builder
		args []any
	)
	b.Grow(len(p.Cond))

	cond := p.Cond
	for i := 0; i < len(cond); i++ {
		c := cond[i]
		switch {
		case c == '\'' || c == '"':
			// copy quoted literal / identifier verbatim
			end := strings.IndexByte(cond[i+1:], c)
			if end < 0 {
				return "", nil, fmt.Errorf("unterminated quote in condition %q", cond)
			}
			b.WriteString(cond[i : i+end+2])
			i += end + 1
		case c == ':' && i+1 < len(cond) && cond[i+1] == ':':
			// postgres cast
			b.WriteString("::")
			i++
		case c == ':' && i+1 < len(cond) && isIdentStart(cond[i+1]):
			j := i + 1
			for j < len(cond) && isIdentPart(cond[j]) {
				j++
			}
			name := cond[i+1 : j]
			v, ok := p.Params[name]
			if !ok {
				return "", nil, fmt.Errorf("%w: %s", ErrUnboundParam, name)
			}
			b.WriteByte('?')
			args = append(args, v)
			i = j - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), args, nil
}

// String renders the predicate for logs; parameters are listed by name in sorted order.
func (p Predicate) String() string {
	if len(p.Params) == 0 {
		return p.Cond
	}
	keys := make([]string, 0, len(p.Params))
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return p.Cond + " [" + strings.Join(keys, ",") + "]"
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Filters is an ordered list of predicates combined with AND.
type Filters []Predicate

// Add appends a predicate and returns the extended list.
func (f Filters) Add(cond string, params map[string]any) Filters {
	return append(f, P(cond, params))
}

// And composes the filters into a single conjunction. An empty list yields nil.
func And(filters ...Predicate) sq.Sqlizer {
	if len(filters) == 0 {
		return nil
	}
	and := make(sq.And, 0, len(filters))
	for _, f := range filters {
		and = append(and, f)
	}
	return and
}
