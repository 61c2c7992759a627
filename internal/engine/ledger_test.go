package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

type ledgerOp struct {
	side   string
	symbol string
	qty    int
	price  float64
}

func TestLedgerApplyFills(t *testing.T) {
	tests := []struct {
		name          string
		startCash     string
		startPos      map[string]*Position
		ops           []ledgerOp
		wantCash      string
		wantPositions map[string]Position
		wantErr       error
	}{
		{
			name:      "open long",
			startCash: "10000",
			ops:       []ledgerOp{{"BUY", "AAPL", 10, 100}},
			wantCash:  "9000",
			wantPositions: map[string]Position{
				"AAPL": {Symbol: "AAPL", Quantity: 10, AvgPrice: decimal.RequireFromString("100")},
			},
		},
		{
			name:      "scale-in long (avg cost updates)",
			startCash: "10000",
			startPos: map[string]*Position{
				"AAPL": {Symbol: "AAPL", Quantity: 10, AvgPrice: decimal.RequireFromString("100")},
			},
			ops:      []ledgerOp{{"BUY", "AAPL", 5, 110}},
			wantCash: "9450",
			wantPositions: map[string]Position{
				"AAPL": {Symbol: "AAPL", Quantity: 15, AvgPrice: decimal.RequireFromString("103.3333333333333333")},
			},
		},
		{
			name:      "reduce long keeps avg cost",
			startCash: "0",
			startPos: map[string]*Position{
				"AAPL": {Symbol: "AAPL", Quantity: 10, AvgPrice: decimal.RequireFromString("100")},
			},
			ops:      []ledgerOp{{"SELL", "AAPL", 4, 120}},
			wantCash: "480",
			wantPositions: map[string]Position{
				"AAPL": {Symbol: "AAPL", Quantity: 6, AvgPrice: decimal.RequireFromString("100")},
			},
		},
		{
			name:      "close long resets avg cost",
			startCash: "0",
			startPos: map[string]*Position{
				"AAPL": {Symbol: "AAPL", Quantity: 10, AvgPrice: decimal.RequireFromString("100")},
			},
			ops:      []ledgerOp{{"SELL", "AAPL", 10, 90}},
			wantCash: "900",
			wantPositions: map[string]Position{
				"AAPL": {Symbol: "AAPL", Quantity: 0, AvgPrice: decimal.Zero},
			},
		},
		{
			name:          "buy with exactly enough cash",
			startCash:     "1000",
			ops:           []ledgerOp{{"BUY", "AAPL", 10, 100}},
			wantCash:      "0",
			wantPositions: map[string]Position{"AAPL": {Symbol: "AAPL", Quantity: 10, AvgPrice: decimal.RequireFromString("100")}},
		},
		{
			name:          "insufficient cash leaves ledger untouched",
			startCash:     "1000",
			ops:           []ledgerOp{{"BUY", "AAPL", 100, 50}},
			wantCash:      "1000",
			wantPositions: map[string]Position{},
			wantErr:       ErrInsufficientCash,
		},
		{
			name:          "sell without position",
			startCash:     "1000",
			ops:           []ledgerOp{{"SELL", "AAPL", 1, 50}},
			wantCash:      "1000",
			wantPositions: map[string]Position{},
			wantErr:       ErrInsufficientPosition,
		},
		{
			name:      "sell more than held",
			startCash: "0",
			startPos: map[string]*Position{
				"AAPL": {Symbol: "AAPL", Quantity: 2, AvgPrice: decimal.RequireFromString("10")},
			},
			ops:      []ledgerOp{{"SELL", "AAPL", 3, 10}},
			wantCash: "0",
			wantPositions: map[string]Position{
				"AAPL": {Symbol: "AAPL", Quantity: 2, AvgPrice: decimal.RequireFromString("10")},
			},
			wantErr: ErrInsufficientPosition,
		},
		{
			name:      "symbols are tracked independently",
			startCash: "5000",
			ops: []ledgerOp{
				{"BUY", "AAPL", 10, 100},
				{"BUY", "MSFT", 5, 200},
				{"SELL", "AAPL", 10, 110},
			},
			wantCash: "4100",
			wantPositions: map[string]Position{
				"AAPL": {Symbol: "AAPL", Quantity: 0, AvgPrice: decimal.Zero},
				"MSFT": {Symbol: "MSFT", Quantity: 5, AvgPrice: decimal.RequireFromString("200")},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := newLedger(decimal.RequireFromString(tc.startCash))
			for sym, pos := range tc.startPos {
				cp := *pos
				l.positions[sym] = &cp
			}

			var err error
			for _, op := range tc.ops {
				if err = applyOp(l, op); err != nil {
					break
				}
			}

			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if !l.cash.Equal(decimal.RequireFromString(tc.wantCash)) {
				t.Fatalf("cash = %s, want %s", l.cash, tc.wantCash)
			}
			if len(l.positions) != len(tc.wantPositions) {
				t.Fatalf("positions = %d, want %d", len(l.positions), len(tc.wantPositions))
			}
			for sym, want := range tc.wantPositions {
				got := l.positions[sym]
				if got == nil {
					t.Fatalf("missing position %s", sym)
				}
				if got.Symbol != want.Symbol || got.Quantity != want.Quantity || !got.AvgPrice.Equal(want.AvgPrice) {
					t.Fatalf("position %s = %+v, want %+v", sym, *got, want)
				}
			}
		})
	}
}

func TestLedgerEquity(t *testing.T) {
	l := newLedger(decimal.RequireFromString("1000"))
	if err := l.buy("AAPL", 2, 100); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := l.buy("MSFT", 1, 50); err != nil {
		t.Fatalf("buy: %v", err)
	}

	// MSFT has no observed price yet and counts as zero.
	l.markPrice("AAPL", 120)
	if got := l.equity(); got != 990 {
		t.Fatalf("equity = %v, want 990", got)
	}

	l.markPrice("MSFT", 60)
	if got := l.equity(); got != 1050 {
		t.Fatalf("equity = %v, want 1050", got)
	}

	snap := l.snapshot(time.Unix(0, 0))
	if snap.Equity != 1050 {
		t.Fatalf("snapshot equity = %v, want 1050", snap.Equity)
	}
	if p := snap.Positions["AAPL"]; p.Quantity != 2 || p.LastPrice != 120 || !p.AvgEntryPrice.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("snapshot AAPL = %+v", p)
	}
}

func TestWeightedAvgPrice(t *testing.T) {
	tests := []struct {
		name             string
		existingAvgPrice decimal.Decimal
		existingQty      decimal.Decimal
		newPrice         decimal.Decimal
		newQty           decimal.Decimal
		want             decimal.Decimal
	}{
		{
			name:             "existing qty zero → returns newPrice",
			existingAvgPrice: decimal.RequireFromString("0"),
			existingQty:      decimal.RequireFromString("0"),
			newPrice:         decimal.RequireFromString("123.45"),
			newQty:           decimal.RequireFromString("10"),
			want:             decimal.RequireFromString("123.45"),
		},
		{
			name:             "new qty zero → unchanged average",
			existingAvgPrice: decimal.RequireFromString("100"),
			existingQty:      decimal.RequireFromString("10"),
			newPrice:         decimal.RequireFromString("150"),
			newQty:           decimal.RequireFromString("0"),
			want:             decimal.RequireFromString("100"),
		},
		{
			name:             "simple mix",
			existingAvgPrice: decimal.RequireFromString("100"),
			existingQty:      decimal.RequireFromString("10"),
			newPrice:         decimal.RequireFromString("110"),
			newQty:           decimal.RequireFromString("5"),
			want:             decimal.RequireFromString("103.3333333333333333"),
		},
		{
			name:             "identical prices",
			existingAvgPrice: decimal.RequireFromString("42.00"),
			existingQty:      decimal.RequireFromString("7"),
			newPrice:         decimal.RequireFromString("42.00"),
			newQty:           decimal.RequireFromString("3"),
			want:             decimal.RequireFromString("42.00"),
		},
		{
			name:             "both quantities zero → zero",
			existingAvgPrice: decimal.RequireFromString("99.99"),
			existingQty:      decimal.RequireFromString("0"),
			newPrice:         decimal.RequireFromString("88.88"),
			newQty:           decimal.RequireFromString("0"),
			want:             decimal.Zero,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := weightedAvg(tc.existingAvgPrice, tc.existingQty, tc.newPrice, tc.newQty)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s, want %s", got.String(), tc.want.String())
			}
		})
	}
}

func TestLedgerConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		startCash := decimal.NewFromInt(rapid.Int64Range(0, 100_000).Draw(t, "cash"))
		l := newLedger(startCash)

		wantCash := startCash
		wantQty := map[string]int{}

		n := rapid.IntRange(0, 50).Draw(t, "ops")
		for i := 0; i < n; i++ {
			op := ledgerOp{
				side:   rapid.SampledFrom([]string{"BUY", "SELL"}).Draw(t, "side"),
				symbol: rapid.SampledFrom([]string{"AAPL", "MSFT"}).Draw(t, "symbol"),
				qty:    rapid.IntRange(1, 100).Draw(t, "qty"),
				price:  float64(rapid.IntRange(1, 100_000).Draw(t, "cents")) / 100,
			}
			beforeCash := l.cash
			beforeQty := l.positionQty(op.symbol)

			err := applyOp(l, op)
			if err != nil {
				if !l.cash.Equal(beforeCash) || l.positionQty(op.symbol) != beforeQty {
					t.Fatalf("rejected %+v changed the ledger", op)
				}
				continue
			}

			notional := decimal.NewFromFloat(op.price).Mul(decimal.NewFromInt(int64(op.qty)))
			if op.side == "BUY" {
				wantCash = wantCash.Sub(notional)
				wantQty[op.symbol] += op.qty
			} else {
				wantCash = wantCash.Add(notional)
				wantQty[op.symbol] -= op.qty
			}

			if l.cash.IsNegative() {
				t.Fatalf("cash went negative: %s", l.cash)
			}
			for sym, pos := range l.positions {
				if pos.Quantity < 0 {
					t.Fatalf("%s quantity went negative", sym)
				}
				if pos.Quantity == 0 && !pos.AvgPrice.IsZero() {
					t.Fatalf("%s flat with avg price %s", sym, pos.AvgPrice)
				}
			}
		}

		if !l.cash.Equal(wantCash) {
			t.Fatalf("cash = %s, want %s", l.cash, wantCash)
		}
		for sym, q := range wantQty {
			if l.positionQty(sym) != q {
				t.Fatalf("%s quantity = %d, want %d", sym, l.positionQty(sym), q)
			}
		}
	})
}

// Helper functions

func applyOp(l *ledger, op ledgerOp) error {
	if op.side == "BUY" {
		return l.buy(op.symbol, op.qty, op.price)
	}
	return l.sell(op.symbol, op.qty, op.price)
}

func (l *ledger) positionQty(symbol string) int {
	if pos := l.positions[symbol]; pos != nil {
		return pos.Quantity
	}
	return 0
}
