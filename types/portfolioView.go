package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type PortfolioView struct {
	Cash      decimal.Decimal
	Positions map[string]PositionSnapshot
	Equity    float64
	Time      time.Time
}

type PositionSnapshot struct {
	Symbol        string
	Quantity      int
	AvgEntryPrice decimal.Decimal
	LastPrice     float64
}
