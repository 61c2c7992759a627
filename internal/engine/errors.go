package engine

import (
	"errors"
	"fmt"
	"tickbacktester/types"
	"time"
)

var (
	ErrInvalidInitialCash   = errors.New("initial cash must be positive")
	ErrInvalidFailProb      = errors.New("fail probability must be within [0, 1]")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrSimulatedFailure     = errors.New("simulated execution failure")
	ErrInsufficientCash     = errors.New("insufficient cash")
	ErrInsufficientPosition = errors.New("insufficient position")
	ErrStrategyPanic        = errors.New("strategy panicked")
)

// Error kinds, used as the metrics label and in log fields.
const (
	KindStrategy  = "strategy"
	KindOrder     = "order"
	KindExecution = "execution"
)

// StrategyError is recorded when a strategy fails or panics on a tick.
type StrategyError struct {
	Strategy  string
	Timestamp time.Time
	Cause     error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("StrategyError: %s: %v at %s", e.Strategy, e.Cause, e.Timestamp.Format(time.RFC3339Nano))
}

func (e *StrategyError) Unwrap() error { return e.Cause }

// OrderError is recorded when a signal cannot become a valid order.
type OrderError struct {
	Order     types.Order
	Timestamp time.Time
	Cause     error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("OrderError: %v (%s) at %s", e.Cause, e.Order, e.Timestamp.Format(time.RFC3339Nano))
}

func (e *OrderError) Unwrap() error { return e.Cause }

// ExecutionError is recorded for orders that end REJECTED or ERROR.
type ExecutionError struct {
	Order types.Order
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("ExecutionError: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func errorKind(err error) string {
	var se *StrategyError
	var oe *OrderError
	switch {
	case errors.As(err, &se):
		return KindStrategy
	case errors.As(err, &oe):
		return KindOrder
	default:
		return KindExecution
	}
}
