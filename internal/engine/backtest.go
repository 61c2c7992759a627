package engine

import (
	"fmt"
	"io"
	"sort"
	"tickbacktester/types"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Process replays ticks in timestamp order. Ticks sharing a timestamp keep
// their input order. Strategy, order and execution failures are recorded
// and never stop the run.
func (e *Engine) Process(ticks []types.MarketTick) {
	sorted := append([]types.MarketTick(nil), ticks...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	var bar *progressbar.ProgressBar
	if e.progress != nil {
		bar = initProgressBar(len(sorted), e.progress)
	}

	for _, tick := range sorted {
		e.step(tick)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	e.logger.Info("backtest finished",
		zap.Int("ticks", len(sorted)),
		zap.Int("orders", len(e.orders)),
		zap.Int("errors", len(e.errs)),
		zap.String("cash", e.ledger.cash.String()),
		zap.Float64("equity", e.ledger.equity()),
	)
}

func (e *Engine) step(tick types.MarketTick) {
	e.ledger.markPrice(tick.Symbol, tick.Price)
	e.recorder.ObserveTick(tick)

	// Every strategy sees the tick before any of its signals settle.
	var pending []pendingSignal
	for _, strat := range e.strategies {
		signals, err := runStrategy(strat, tick)
		if err != nil {
			e.record(&StrategyError{Strategy: strat.Name(), Timestamp: tick.Timestamp, Cause: err})
			continue
		}
		for _, sig := range signals {
			pending = append(pending, pendingSignal{sig: sig, strategy: strat.Name()})
		}
	}
	for _, p := range pending {
		e.processSignal(p.sig, p.strategy, tick)
	}

	eq := e.ledger.equity()
	e.equity = append(e.equity, types.EquityPoint{Timestamp: tick.Timestamp, Equity: eq})
	e.recorder.ObserveEquity(eq)
}

type pendingSignal struct {
	sig      types.Signal
	strategy string
}

// runStrategy turns a panic inside the strategy into an error.
func runStrategy(strat Strategy, tick types.MarketTick) (signals []types.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			signals = nil
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, r)
		}
	}()
	return strat.GenerateSignals(tick)
}

func (e *Engine) processSignal(sig types.Signal, strategy string, tick types.MarketTick) {
	order, err := newOrder(sig, strategy, tick.Timestamp)
	if err != nil {
		e.record(&OrderError{Order: *order, Timestamp: tick.Timestamp, Cause: err})
		return
	}
	e.orders = append(e.orders, order)

	if err := e.executeOrder(order); err != nil {
		e.record(&ExecutionError{Order: *order, Cause: err})
	}
	e.recorder.ObserveOrder(*order)
}

// executeOrder settles a validated order against the ledger. The simulated
// failure draw happens before any balance check.
func (e *Engine) executeOrder(order *types.Order) error {
	if e.rng.Float64() < e.failProb {
		_ = order.Transition(types.OrderError)
		return fmt.Errorf("%w for %s", ErrSimulatedFailure, order)
	}

	var err error
	switch order.Side {
	case types.SideTypeBuy:
		err = e.ledger.buy(order.Symbol, order.Quantity, order.Price)
	case types.SideTypeSell:
		err = e.ledger.sell(order.Symbol, order.Quantity, order.Price)
	default:
		err = fmt.Errorf("%w: side %q", ErrInvalidOrder, order.Side)
	}
	if err != nil {
		_ = order.Transition(types.OrderRejected)
		return err
	}
	return order.Transition(types.OrderFilled)
}

func (e *Engine) record(err error) {
	e.errs = append(e.errs, err)
	kind := errorKind(err)
	e.recorder.ObserveError(kind)
	e.logger.Debug("backtest error", zap.String("kind", kind), zap.Error(err))
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
