package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	qb "github.com/maxviazov/pr-insights-service/internal/querybuilder"
	"github.com/maxviazov/pr-insights-service/internal/repository"
)

// querier is the read-only executor implemented by pgxpool.Pool, pgx.Conn and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ querier = (*pgxpool.Pool)(nil)

// pageSpec is everything the executor needs for one paginated listing.
type pageSpec struct {
	// base carries projection, joins, grouping and filters; no ORDER BY or LIMIT.
	base  qb.Query
	order []string
	opts  repository.PageOptions
}

// paginate runs the count and the row fetch in parallel. The two statements share the
// filter set but not a snapshot; a write landing between them can make ItemCount and Data
// disagree, which callers accept.
func paginate[R any, T any](ctx context.Context, exec querier, spec pageSpec, mapFn func(R) T) (repository.Page[T], error) {
	countSQL, countArgs, err := spec.base.Count().ToSql()
	if err != nil {
		return repository.Page[T]{}, errors.Join(repository.ErrDataAccess, err)
	}
	rowsSQL, rowsArgs, err := spec.base.
		OrderBy(spec.order...).
		Paginate(spec.opts.Limit, spec.opts.Skip()).
		ToSql()
	if err != nil {
		return repository.Page[T]{}, errors.Join(repository.ErrDataAccess, err)
	}

	var (
		itemCount int64
		records   []R
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exec.QueryRow(gctx, countSQL, countArgs...).Scan(&itemCount)
	})
	g.Go(func() error {
		rows, err := exec.Query(gctx, rowsSQL, rowsArgs...)
		if err != nil {
			return err
		}
		records, err = pgx.CollectRows(rows, pgx.RowToStructByName[R])
		return err
	})
	if err := g.Wait(); err != nil {
		return repository.Page[T]{}, repository.MapPgError(err)
	}

	data := make([]T, 0, len(records))
	for _, r := range records {
		data = append(data, mapFn(r))
	}
	return repository.NewPage(data, itemCount, spec.opts), nil
}

func ensurePool(pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("pgx pool is nil")
	}
	return nil
}
