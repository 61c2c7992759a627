package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"tickbacktester/types"
	"time"

	"github.com/go-playground/validator/v10"
)

var orderValidator = newOrderValidator()

func newOrderValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(err)
	}
	return v
}

// normalizeSide upper-cases the action. Anything that is not BUY or SELL
// after normalization is kept as is and fails validation.
func normalizeSide(action types.Side) types.Side {
	return types.Side(strings.ToUpper(strings.TrimSpace(string(action))))
}

// newOrder builds a NEW order from a signal and validates it.
func newOrder(sig types.Signal, strategy string, ts time.Time) (*types.Order, error) {
	order := types.NewOrder(sig.Symbol, sig.Quantity, sig.Price, normalizeSide(sig.Action), strategy, ts)
	if err := validateOrder(order); err != nil {
		return order, err
	}
	return order, nil
}

func validateOrder(order *types.Order) error {
	err := orderValidator.Struct(order)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Quantity":
		return "quantity must be positive"
	case "Price":
		if fe.Tag() == "finite" {
			return "price must be finite"
		}
		return "price must be positive"
	case "Side":
		return "side must be 'BUY' or 'SELL'"
	case "Symbol":
		return "symbol is required"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
