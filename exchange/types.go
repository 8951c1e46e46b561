package exchange

import "time"

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Valid reports whether s is a recognized side.
func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

// OrderType is the order execution style.
type OrderType string

const (
	OrderMarket OrderType = "market"
	OrderLimit  OrderType = "limit"
)

// Valid reports whether t is a recognized order type.
func (t OrderType) Valid() bool { return t == OrderMarket || t == OrderLimit }

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusOpen     OrderStatus = "open"
	StatusClosed   OrderStatus = "closed"
	StatusCanceled OrderStatus = "canceled"
)

// Order is a placed order as reported by a venue.
type Order struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Type      OrderType   `json:"type"`
	Amount    float64     `json:"amount"`
	Price     float64     `json:"price,omitempty"`
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// Balance is the holdings of one currency. Total always equals Free + Used.
type Balance struct {
	Currency string  `json:"currency"`
	Free     float64 `json:"free"`
	Used     float64 `json:"used"`
	Total    float64 `json:"total"`
}

// Ticker is a venue's current market view of a symbol.
type Ticker struct {
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Last      float64   `json:"last"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderParams describes an order to create.
type OrderParams struct {
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Type   OrderType `json:"type"`
	Amount float64   `json:"amount"`
	// Price is required for limit orders and ignored for market orders.
	Price *float64 `json:"price,omitempty"`
}
