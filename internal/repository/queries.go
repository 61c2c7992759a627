package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const ticksTable = "market_ticks"

type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type tickRow struct {
	Ts     time.Time
	Symbol string
	Price  decimal.Decimal
}

// getTicksParams filters market_ticks. Zero values leave a bound open.
type getTicksParams struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

type queries struct {
	db      dbtx
	builder sq.StatementBuilderType
}

func newQueries(db dbtx) *queries {
	return &queries{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (q *queries) GetTicks(ctx context.Context, arg getTicksParams) ([]tickRow, error) {
	query, args, err := q.buildTicksQuery(arg)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[tickRow])
}

// buildTicksQuery selects ticks in [Start, End) ordered by time.
func (q *queries) buildTicksQuery(arg getTicksParams) (string, []any, error) {
	b := q.builder.
		Select("ts", "symbol", "price").
		From(ticksTable)
	if arg.Symbol != "" {
		b = b.Where(sq.Eq{"symbol": arg.Symbol})
	}
	if !arg.Start.IsZero() {
		b = b.Where(sq.GtOrEq{"ts": arg.Start})
	}
	if !arg.End.IsZero() {
		b = b.Where(sq.Lt{"ts": arg.End})
	}
	return b.OrderBy("ts ASC").ToSql()
}
