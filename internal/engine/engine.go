package engine

import (
	"io"
	"tickbacktester/types"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine replays ticks through a set of strategies against a single cash
// ledger. It is not safe for concurrent use.
type Engine struct {
	strategies []Strategy
	ledger     *ledger
	failProb   float64
	rng        RandSource
	logger     *zap.Logger
	recorder   Recorder
	progress   io.Writer

	orders []*types.Order
	errs   []error
	equity []types.EquityPoint
}

func NewEngine(cfg *EngineConfig, strategies ...Strategy) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		strategies: strategies,
		ledger:     newLedger(decimal.NewFromFloat(cfg.initialCash)),
		failProb:   cfg.failProb,
		rng:        cfg.rng,
		logger:     cfg.logger,
		recorder:   cfg.recorder,
		progress:   cfg.progress,
	}
	if e.rng == nil {
		e.rng = globalRand{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	return e, nil
}

// OrderHistory returns every validated order in creation order.
func (e *Engine) OrderHistory() []types.Order {
	out := make([]types.Order, len(e.orders))
	for i, o := range e.orders {
		out[i] = *o
	}
	return out
}

// Errors returns the recorded errors as category-prefixed strings.
func (e *Engine) Errors() []string {
	out := make([]string, len(e.errs))
	for i, err := range e.errs {
		out[i] = err.Error()
	}
	return out
}

// Failures returns the recorded errors for inspection with errors.As.
func (e *Engine) Failures() []error {
	return append([]error(nil), e.errs...)
}

func (e *Engine) EquityCurve() []types.EquityPoint {
	return append([]types.EquityPoint(nil), e.equity...)
}

func (e *Engine) Cash() decimal.Decimal {
	return e.ledger.cash
}

// Position returns the holding for symbol, or a zero position if the
// symbol was never filled.
func (e *Engine) Position(symbol string) Position {
	if pos := e.ledger.positions[symbol]; pos != nil {
		return *pos
	}
	return Position{Symbol: symbol}
}

func (e *Engine) LastPrice(symbol string) optional.Option[float64] {
	if px, ok := e.ledger.lastPrices[symbol]; ok {
		return optional.Some(px)
	}
	return optional.None[float64]()
}

func (e *Engine) Equity() float64 {
	return e.ledger.equity()
}

func (e *Engine) Snapshot(curTime time.Time) types.PortfolioView {
	return e.ledger.snapshot(curTime)
}
