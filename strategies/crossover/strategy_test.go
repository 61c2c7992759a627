package crossover

import (
	"errors"
	"testing"
	"tickbacktester/types"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		fast, slow int
		wantErr    error
	}{
		{"valid", 2, 3, nil},
		{"equal windows", 3, 3, ErrInvalidWindows},
		{"fast above slow", 5, 3, ErrInvalidWindows},
		{"zero fast", 0, 3, ErrInvalidWindows},
		{"negative slow", 1, -2, ErrInvalidWindows},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New("AAPL", tc.fast, tc.slow, 10)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Name, s.Name())
		})
	}
}

func TestGenerateSignals_Crossings(t *testing.T) {
	s, err := New("AAPL", 2, 3, 7)
	require.NoError(t, err)

	prices := []float64{10, 10, 10, 9, 12, 12, 5}
	want := map[int]types.Side{
		3: types.SideTypeSell,
		4: types.SideTypeBuy,
		6: types.SideTypeSell,
	}

	for i, p := range prices {
		signals, err := s.GenerateSignals(tick("AAPL", i, p))
		require.NoError(t, err)

		side, ok := want[i]
		if !ok {
			assert.Empty(t, signals, "tick %d", i)
			continue
		}
		require.Len(t, signals, 1, "tick %d", i)
		assert.Equal(t, types.NewSignal(side, "AAPL", 7, p), signals[0])
	}
}

func TestGenerateSignals_IgnoresOtherSymbols(t *testing.T) {
	s, err := New("AAPL", 1, 2, 1)
	require.NoError(t, err)

	for i, p := range []float64{1, 2, 1, 2, 1} {
		signals, err := s.GenerateSignals(tick("MSFT", i, p))
		require.NoError(t, err)
		assert.Empty(t, signals)
	}
	assert.Equal(t, 0, s.history.Len())
}

func TestGenerateSignals_FirstFullWindowNeverSignals(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		slow := rapid.IntRange(2, 10).Draw(t, "slow")
		fast := rapid.IntRange(1, slow-1).Draw(t, "fast")
		prices := rapid.SliceOfN(rapid.Float64Range(1, 1000), slow, slow).Draw(t, "prices")

		s, err := New("X", fast, slow, 1)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i, p := range prices {
			signals, err := s.GenerateSignals(tick("X", i, p))
			if err != nil {
				t.Fatalf("GenerateSignals: %v", err)
			}
			if len(signals) != 0 {
				t.Fatalf("tick %d emitted %v before a previous diff existed", i, signals)
			}
		}
	})
}

func TestGenerateSignals_AtMostOneSignalAtTickPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prices := rapid.SliceOf(rapid.Float64Range(1, 1000)).Draw(t, "prices")
		s, err := New("X", 2, 4, 3)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for i, p := range prices {
			signals, err := s.GenerateSignals(tick("X", i, p))
			if err != nil {
				t.Fatalf("GenerateSignals: %v", err)
			}
			if len(signals) > 1 {
				t.Fatalf("tick %d emitted %d signals", i, len(signals))
			}
			for _, sig := range signals {
				if sig.Price != p || sig.Quantity != 3 || sig.Symbol != "X" {
					t.Fatalf("unexpected signal %+v for price %v", sig, p)
				}
			}
		}
	})
}

func TestNew_WrapsWindowValues(t *testing.T) {
	_, err := New("AAPL", 4, 2, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidWindows))
	assert.Contains(t, err.Error(), "fast=4 slow=2")
}

// ----------------Helper functions----------------

func tick(symbol string, i int, price float64) types.MarketTick {
	return types.MarketTick{
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
		Symbol:    symbol,
		Price:     price,
	}
}
