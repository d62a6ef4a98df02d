package broker

import (
	"github.com/shopspring/decimal"
)

// Credentials selects and authenticates a broker kind. They are held
// only for the duration of a login call and never persisted.
type Credentials struct {
	Kind     string
	Username string
	Password string
	ExePath  string
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type OrderRequest struct {
	Symbol   string
	Price    decimal.Decimal
	Quantity int
	Side     Side
}

// OrderAck echoes the submitted order together with the broker-assigned
// entrust id. The id may be empty when the automation client did not
// report one.
type OrderAck struct {
	OrderID  string          `json:"order_id"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Side     Side            `json:"side"`
}

type Balance struct {
	TotalAssets   decimal.Decimal `json:"total_assets"`
	Cash          decimal.Decimal `json:"cash"`
	MarketValue   decimal.Decimal `json:"market_value"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	AvailableCash decimal.Decimal `json:"available_cash"`
	FrozenCash    decimal.Decimal `json:"frozen_cash"`
	UpdateTime    string          `json:"update_time"`
}

type Position struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Quantity      int             `json:"quantity"`
	Available     int             `json:"available"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	Profit        decimal.Decimal `json:"profit"`
	ProfitPercent decimal.Decimal `json:"profit_percent"`
}

// Order is an entrust reported by the broker for the current day.
type Order struct {
	OrderID   string          `json:"order_id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	FilledQty int             `json:"filled_qty"`
	Status    string          `json:"status"`
	OrderTime string          `json:"order_time"`
}

// Fill is a single execution reported by the broker for the current day.
type Fill struct {
	FillID     string          `json:"fill_id"`
	OrderID    string          `json:"order_id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Side       string          `json:"side"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	FillTime   string          `json:"fill_time"`
	Commission decimal.Decimal `json:"commission"`
}
