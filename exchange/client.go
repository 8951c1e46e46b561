package exchange

import (
	"context"
	"fmt"
)

// ID identifies a supported trading venue.
type ID string

// The closed set of venues the factory understands.
const (
	Binance  ID = "binance"
	Coinbase ID = "coinbase"
	Kraken   ID = "kraken"
	Bybit    ID = "bybit"
	OKX      ID = "okx"
)

// Valid reports whether id is one of the supported venues.
func (id ID) Valid() bool {
	switch id {
	case Binance, Coinbase, Kraken, Bybit, OKX:
		return true
	}
	return false
}

// Credentials holds API access keys for one venue.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Client is the venue-facing contract the engine's place-order handler
// depends on. All methods honor ctx and report failures as errors.
type Client interface {
	// FetchBalance returns holdings keyed by currency.
	FetchBalance(ctx context.Context) (map[string]Balance, error)
	// FetchTicker returns the venue's current view of a symbol.
	FetchTicker(ctx context.Context, symbol string) (*Ticker, error)
	// CreateOrder places an order and returns the venue's record of it.
	CreateOrder(ctx context.Context, params OrderParams) (*Order, error)
	// CancelOrder cancels an open order and returns its final record.
	CancelOrder(ctx context.Context, id, symbol string) (*Order, error)
	// FetchOrder returns one order by id.
	FetchOrder(ctx context.Context, id, symbol string) (*Order, error)
	// FetchOpenOrders returns open orders, optionally filtered by symbol
	// (empty string means all).
	FetchOpenOrders(ctx context.Context, symbol string) ([]Order, error)
}

// validateParams applies the venue-independent order checks.
func validateParams(params OrderParams) error {
	if params.Symbol == "" {
		return fmt.Errorf("exchange: symbol is required")
	}
	if !params.Side.Valid() {
		return fmt.Errorf("exchange: invalid side %q", params.Side)
	}
	if !params.Type.Valid() {
		return fmt.Errorf("exchange: invalid order type %q", params.Type)
	}
	if params.Amount <= 0 {
		return fmt.Errorf("exchange: amount must be positive")
	}
	if params.Type == OrderLimit && (params.Price == nil || *params.Price <= 0) {
		return fmt.Errorf("exchange: limit orders require a positive price")
	}
	return nil
}
