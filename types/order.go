package types

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrOrderFinalized = errors.New("order already left NEW")

type Order struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol" validate:"required"`
	Quantity  int         `json:"quantity" validate:"gt=0"`
	Price     float64     `json:"price" validate:"gt=0,finite"`
	Side      Side        `json:"side" validate:"oneof=BUY SELL"`
	Status    OrderStatus `json:"status"`
	Strategy  string      `json:"strategy,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

func NewOrder(symbol string, quantity int, price float64, side Side, strategy string, createdAt time.Time) *Order {
	return &Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Quantity:  quantity,
		Price:     price,
		Side:      side,
		Status:    OrderNew,
		Strategy:  strategy,
		CreatedAt: createdAt,
	}
}

// Transition moves a NEW order to a terminal status. It fails for any
// order that has already transitioned.
func (o *Order) Transition(status OrderStatus) error {
	if o.Status != OrderNew {
		return fmt.Errorf("%s -> %s: %w", o.Status, status, ErrOrderFinalized)
	}
	o.Status = status
	return nil
}

// String renders the order as SIDE QTY SYMBOL @ PRICE.
func (o Order) String() string {
	return fmt.Sprintf("%s %d %s @ %v", o.Side, o.Quantity, o.Symbol, o.Price)
}
