package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jax-labs/apexflow/market"
)

// Known quote currencies, longest first so BTCUSDT splits as BTC/USDT and
// not BTCU/SDT.
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "USD", "BTC", "ETH"}

// PaperClient simulates a venue in memory. Market orders fill immediately at
// the price source's current quote; limit orders stay open until canceled.
// Used for demo deployments and engine tests.
type PaperClient struct {
	source market.Source

	mu       sync.Mutex
	balances map[string]Balance
	orders   map[string]*Order
	orderSeq int
	nowFunc  func() time.Time
}

// NewPaper creates a paper client with the given starting free balances.
func NewPaper(source market.Source, initial map[string]float64) *PaperClient {
	balances := make(map[string]Balance, len(initial))
	for currency, free := range initial {
		balances[currency] = Balance{Currency: currency, Free: free, Total: free}
	}
	return &PaperClient{
		source:   source,
		balances: balances,
		orders:   make(map[string]*Order),
		nowFunc:  time.Now,
	}
}

// FetchBalance returns a copy of the simulated holdings.
func (c *PaperClient) FetchBalance(ctx context.Context) (map[string]Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Balance, len(c.balances))
	for k, v := range c.balances {
		out[k] = v
	}
	return out, nil
}

// FetchTicker synthesizes a ticker around the price source's quote.
func (c *PaperClient) FetchTicker(ctx context.Context, symbol string) (*Ticker, error) {
	quote, err := c.source.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &Ticker{
		Symbol:    symbol,
		Bid:       quote.Price,
		Ask:       quote.Price,
		Last:      quote.Price,
		High:      quote.High24h,
		Low:       quote.Low24h,
		Volume:    quote.Volume24h,
		Timestamp: c.nowFunc(),
	}, nil
}

// CreateOrder places a simulated order. Market orders settle balances at the
// current quote and come back closed.
func (c *PaperClient) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	order := &Order{
		Symbol:    params.Symbol,
		Side:      params.Side,
		Type:      params.Type,
		Amount:    params.Amount,
		Status:    StatusOpen,
		Timestamp: c.nowFunc(),
	}

	if params.Type == OrderMarket {
		quote, err := c.source.Quote(ctx, params.Symbol)
		if err != nil {
			return nil, err
		}
		order.Price = quote.Price
		if err := c.settle(params, quote.Price); err != nil {
			return nil, err
		}
		order.Status = StatusClosed
	} else {
		order.Price = *params.Price
	}

	c.mu.Lock()
	c.orderSeq++
	order.ID = "paper-" + strconv.Itoa(c.orderSeq)
	c.orders[order.ID] = order
	c.mu.Unlock()

	cp := *order
	return &cp, nil
}

// settle moves simulated balances for a filled order.
func (c *PaperClient) settle(params OrderParams, price float64) error {
	base, quote := splitSymbol(params.Symbol)
	cost := params.Amount * price

	c.mu.Lock()
	defer c.mu.Unlock()

	if params.Side == SideBuy {
		q := c.balances[quote]
		if q.Free < cost {
			return fmt.Errorf("paper: insufficient %s balance (%v < %v)", quote, q.Free, cost)
		}
		c.adjust(quote, -cost)
		c.adjust(base, params.Amount)
	} else {
		b := c.balances[base]
		if b.Free < params.Amount {
			return fmt.Errorf("paper: insufficient %s balance (%v < %v)", base, b.Free, params.Amount)
		}
		c.adjust(base, -params.Amount)
		c.adjust(quote, cost)
	}
	return nil
}

// adjust changes a currency's free balance. Caller must hold c.mu.
func (c *PaperClient) adjust(currency string, delta float64) {
	b := c.balances[currency]
	b.Currency = currency
	b.Free += delta
	b.Total = b.Free + b.Used
	c.balances[currency] = b
}

// CancelOrder marks an open simulated order canceled.
func (c *PaperClient) CancelOrder(ctx context.Context, id, symbol string) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders[id]
	if !ok {
		return nil, fmt.Errorf("paper: order %s not found", id)
	}
	if order.Status != StatusOpen {
		return nil, fmt.Errorf("paper: order %s is %s", id, order.Status)
	}
	order.Status = StatusCanceled
	cp := *order
	return &cp, nil
}

// FetchOrder returns one simulated order by id.
func (c *PaperClient) FetchOrder(ctx context.Context, id, symbol string) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	order, ok := c.orders[id]
	if !ok {
		return nil, fmt.Errorf("paper: order %s not found", id)
	}
	cp := *order
	return &cp, nil
}

// FetchOpenOrders returns simulated open orders, newest last.
func (c *PaperClient) FetchOpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var open []Order
	for i := 1; i <= c.orderSeq; i++ {
		order, ok := c.orders["paper-"+strconv.Itoa(i)]
		if !ok || order.Status != StatusOpen {
			continue
		}
		if symbol != "" && order.Symbol != symbol {
			continue
		}
		open = append(open, *order)
	}
	return open, nil
}

// splitSymbol splits a concatenated pair like BTCUSDT into base and quote.
// Unrecognized quotes fall back to treating the whole symbol as the base
// priced in USDT.
func splitSymbol(symbol string) (base, quote string) {
	for _, q := range quoteCurrencies {
		if strings.HasSuffix(symbol, q) && len(symbol) > len(q) {
			return symbol[:len(symbol)-len(q)], q
		}
	}
	return symbol, "USDT"
}
