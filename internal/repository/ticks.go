package repository

import (
	"context"
	"errors"
	"sort"
	"tickbacktester/types"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetTicks loads ticks for symbol in [start, end). An empty symbol loads
// every symbol and zero times leave that bound open.
func (db *Database) GetTicks(ctx context.Context, symbol string, start, end time.Time) ([]types.MarketTick, error) {
	rows, err := db.ticks.GetTicks(ctx, getTicksParams{Symbol: symbol, Start: start, End: end})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoTicks
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoTicks
	}
	return convertTicks(rows), nil
}

func convertTicks(rows []tickRow) []types.MarketTick {
	ticks := make([]types.MarketTick, 0, len(rows))
	for _, row := range rows {
		ticks = append(ticks, types.MarketTick{
			Timestamp: row.Ts,
			Symbol:    row.Symbol,
			Price:     row.Price.InexactFloat64(),
		})
	}
	sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Timestamp.Before(ticks[j].Timestamp) })
	return ticks
}
