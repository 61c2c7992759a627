package types

// Signal is a strategy's trade intent. It lives only for the tick that
// produced it.
type Signal struct {
	Action   Side
	Symbol   string
	Quantity int
	Price    float64
}

func NewSignal(action Side, symbol string, quantity int, price float64) Signal {
	return Signal{
		Action:   action,
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
	}
}
