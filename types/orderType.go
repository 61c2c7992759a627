package types

type Side string

type OrderStatus string

const (
	OrderNew      OrderStatus = "NEW"
	OrderFilled   OrderStatus = "FILLED"
	OrderRejected OrderStatus = "REJECTED"
	OrderError    OrderStatus = "ERROR"

	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

// Terminal reports whether the status is one an order cannot leave.
func (s OrderStatus) Terminal() bool {
	return s == OrderFilled || s == OrderRejected || s == OrderError
}
