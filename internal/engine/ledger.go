package engine

import (
	"fmt"
	"sort"
	"tickbacktester/types"
	"time"

	"github.com/shopspring/decimal"
)

type ledger struct {
	cash       decimal.Decimal
	positions  map[string]*Position
	lastPrices map[string]float64
}

// Position is the holding in one symbol. AvgPrice is zero whenever
// Quantity is zero.
type Position struct {
	Symbol   string
	Quantity int
	AvgPrice decimal.Decimal
}

func newLedger(initialCash decimal.Decimal) *ledger {
	return &ledger{
		cash:       initialCash,
		positions:  make(map[string]*Position),
		lastPrices: make(map[string]float64),
	}
}

func (l *ledger) markPrice(symbol string, price float64) {
	l.lastPrices[symbol] = price
}

// buy debits qty*price and folds the fill into the weighted-average cost.
// Nothing changes when cash does not cover the cost.
func (l *ledger) buy(symbol string, qty int, price float64) error {
	px := decimal.NewFromFloat(price)
	q := decimal.NewFromInt(int64(qty))
	cost := px.Mul(q)
	if l.cash.LessThan(cost) {
		return fmt.Errorf("%w to buy %d %s at %v", ErrInsufficientCash, qty, symbol, price)
	}

	pos := l.positions[symbol]
	if pos == nil {
		pos = &Position{Symbol: symbol}
		l.positions[symbol] = pos
	}
	pos.AvgPrice = weightedAvg(pos.AvgPrice, decimal.NewFromInt(int64(pos.Quantity)), px, q)
	pos.Quantity += qty
	l.cash = l.cash.Sub(cost)
	return nil
}

// sell credits qty*price. Nothing changes when the holding is smaller than qty.
func (l *ledger) sell(symbol string, qty int, price float64) error {
	pos := l.positions[symbol]
	if pos == nil || pos.Quantity < qty {
		return fmt.Errorf("%w to sell %d %s", ErrInsufficientPosition, qty, symbol)
	}

	l.cash = l.cash.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
	pos.Quantity -= qty
	if pos.Quantity == 0 {
		pos.AvgPrice = decimal.Zero
	}
	return nil
}

// equity marks every position at its last seen price. Symbols never seen
// are valued at zero.
func (l *ledger) equity() float64 {
	eq := l.cash.InexactFloat64()
	for _, sym := range l.symbols() {
		eq += float64(l.positions[sym].Quantity) * l.lastPrices[sym]
	}
	return eq
}

func (l *ledger) snapshot(curTime time.Time) types.PortfolioView {
	view := types.PortfolioView{
		Cash:      l.cash,
		Positions: make(map[string]types.PositionSnapshot, len(l.positions)),
		Equity:    l.equity(),
		Time:      curTime,
	}

	for sym, pos := range l.positions {
		view.Positions[sym] = types.PositionSnapshot{
			Symbol:        pos.Symbol,
			Quantity:      pos.Quantity,
			AvgEntryPrice: pos.AvgPrice,
			LastPrice:     l.lastPrices[sym],
		}
	}
	return view
}

// symbols returns position symbols in a fixed order so float sums are
// reproducible between runs.
func (l *ledger) symbols() []string {
	out := make([]string, 0, len(l.positions))
	for sym := range l.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func weightedAvg(existingAvgPrice, existingQty, newPrice, newQty decimal.Decimal) decimal.Decimal {
	total := existingQty.Add(newQty)
	if total.IsZero() {
		return decimal.Zero
	}
	if existingQty.IsZero() {
		return newPrice
	}
	return existingAvgPrice.Mul(existingQty).
		Add(newPrice.Mul(newQty)).
		Div(total)
}
