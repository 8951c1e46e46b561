package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/jax-labs/apexflow/errors"
	"github.com/jax-labs/apexflow/httpclient"
	"github.com/jax-labs/apexflow/resilience"
)

const (
	binanceBaseURL    = "https://api.binance.com"
	binanceRecvWindow = "5000"
)

// BinanceClient talks to the Binance spot REST API. Private endpoints are
// signed with HMAC-SHA256 over the final query string per the venue's
// SIGNED endpoint rules. Reads are retried; order mutations are not, since
// a timed-out create may still have been accepted.
type BinanceClient struct {
	http    *httpclient.Client
	creds   Credentials
	retry   resilience.RetryConfig
	nowFunc func() time.Time
}

// NewBinance constructs a Binance client. cfg.BaseURL overrides the
// production endpoint for testnets and tests.
func NewBinance(creds Credentials, cfg FactoryConfig) *BinanceClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = binanceBaseURL
	}

	// Spot API allows bursts well above this; stay conservative.
	hc, _ := httpclient.New(httpclient.Config{
		BaseURL: baseURL,
		Timeout: 15 * time.Second,
		RateLimiter: &resilience.RateLimiterConfig{
			Rate:  10,
			Burst: 20,
		},
	})

	retry := resilience.DefaultRetryConfig()
	retry.RetryIf = httpclient.IsRetryable

	return &BinanceClient{
		http:    hc,
		creds:   creds,
		retry:   retry,
		nowFunc: time.Now,
	}
}

// signedAuth returns the per-request auth that attaches the API key header
// and appends the HMAC signature of the final query string.
func (c *BinanceClient) signedAuth() *httpclient.AuthConfig {
	return httpclient.CustomAuth(func(req *http.Request) {
		req.Header.Set("X-MBX-APIKEY", c.creds.APIKey)
		mac := hmac.New(sha256.New, []byte(c.creds.APISecret))
		mac.Write([]byte(req.URL.RawQuery))
		sig := hex.EncodeToString(mac.Sum(nil))
		req.URL.RawQuery += "&signature=" + sig
	})
}

// signedQuery adds the timestamp and recvWindow parameters required on
// every signed request.
func (c *BinanceClient) signedQuery(q map[string]string) map[string]string {
	if q == nil {
		q = make(map[string]string, 2)
	}
	q["timestamp"] = strconv.FormatInt(c.nowFunc().UnixMilli(), 10)
	q["recvWindow"] = binanceRecvWindow
	return q
}

type binanceBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type binanceAccount struct {
	Balances []binanceBalance `json:"balances"`
}

// FetchBalance returns non-zero holdings keyed by currency.
func (c *BinanceClient) FetchBalance(ctx context.Context) (map[string]Balance, error) {
	resp, err := resilience.Retry(ctx, c.retry, func() (*httpclient.Response, error) {
		return c.http.Do(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   "/api/v3/account",
			Query:  c.signedQuery(nil),
			Auth:   c.signedAuth(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("binance: fetch balance: %w", err)
	}

	var account binanceAccount
	if err := json.Unmarshal(resp.Body, &account); err != nil {
		return nil, fmt.Errorf("binance: decode account: %w", err)
	}

	balances := make(map[string]Balance)
	for _, b := range account.Balances {
		free, err1 := strconv.ParseFloat(b.Free, 64)
		used, err2 := strconv.ParseFloat(b.Locked, 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("binance: bad balance for %s", b.Asset)
		}
		if free == 0 && used == 0 {
			continue
		}
		balances[b.Asset] = Balance{
			Currency: b.Asset,
			Free:     free,
			Used:     used,
			Total:    free + used,
		}
	}
	return balances, nil
}

type binanceTicker struct {
	Symbol    string `json:"symbol"`
	BidPrice  string `json:"bidPrice"`
	AskPrice  string `json:"askPrice"`
	LastPrice string `json:"lastPrice"`
	HighPrice string `json:"highPrice"`
	LowPrice  string `json:"lowPrice"`
	Volume    string `json:"volume"`
	CloseTime int64  `json:"closeTime"`
}

// FetchTicker returns the 24hr ticker for a symbol.
func (c *BinanceClient) FetchTicker(ctx context.Context, symbol string) (*Ticker, error) {
	resp, err := resilience.Retry(ctx, c.retry, func() (*httpclient.Response, error) {
		return c.http.Do(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   "/api/v3/ticker/24hr",
			Query:  map[string]string{"symbol": symbol},
		})
	})
	if err != nil {
		return nil, apperrors.PriceUnavailable(symbol, err)
	}

	var t binanceTicker
	if err := json.Unmarshal(resp.Body, &t); err != nil {
		return nil, apperrors.PriceUnavailable(symbol, err)
	}

	ticker := &Ticker{Symbol: t.Symbol, Timestamp: time.UnixMilli(t.CloseTime)}
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{t.BidPrice, &ticker.Bid},
		{t.AskPrice, &ticker.Ask},
		{t.LastPrice, &ticker.Last},
		{t.HighPrice, &ticker.High},
		{t.LowPrice, &ticker.Low},
		{t.Volume, &ticker.Volume},
	} {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, apperrors.PriceUnavailable(symbol, fmt.Errorf("bad ticker field %q", f.raw))
		}
		*f.dst = v
	}
	return ticker, nil
}

type binanceOrder struct {
	OrderID       int64  `json:"orderId"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	OrigQty       string `json:"origQty"`
	Price         string `json:"price"`
	Status        string `json:"status"`
	TransactTime  int64  `json:"transactTime"`
	Time          int64  `json:"time"`
	CummulativeQQ string `json:"cummulativeQuoteQty"`
}

func (o binanceOrder) toOrder() *Order {
	ts := o.TransactTime
	if ts == 0 {
		ts = o.Time
	}
	price, _ := strconv.ParseFloat(o.Price, 64)
	amount, _ := strconv.ParseFloat(o.OrigQty, 64)

	status := StatusOpen
	switch o.Status {
	case "FILLED":
		status = StatusClosed
	case "CANCELED", "REJECTED", "EXPIRED":
		status = StatusCanceled
	}

	side := SideBuy
	if o.Side == "SELL" {
		side = SideSell
	}
	typ := OrderLimit
	if o.Type == "MARKET" {
		typ = OrderMarket
	}

	return &Order{
		ID:        strconv.FormatInt(o.OrderID, 10),
		Symbol:    o.Symbol,
		Side:      side,
		Type:      typ,
		Amount:    amount,
		Price:     price,
		Status:    status,
		Timestamp: time.UnixMilli(ts),
	}
}

// CreateOrder places a spot order. Not retried.
func (c *BinanceClient) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	q := map[string]string{
		"symbol":   params.Symbol,
		"side":     binanceSide(params.Side),
		"type":     binanceType(params.Type),
		"quantity": strconv.FormatFloat(params.Amount, 'f', -1, 64),
	}
	if params.Type == OrderLimit {
		q["price"] = strconv.FormatFloat(*params.Price, 'f', -1, 64)
		q["timeInForce"] = "GTC"
	}

	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/v3/order",
		Query:  c.signedQuery(q),
		Auth:   c.signedAuth(),
	})
	if err != nil {
		return nil, apperrors.OrderRejected(params.Symbol, err)
	}

	var o binanceOrder
	if err := json.Unmarshal(resp.Body, &o); err != nil {
		return nil, fmt.Errorf("binance: decode order: %w", err)
	}
	return o.toOrder(), nil
}

// CancelOrder cancels an open order. Not retried.
func (c *BinanceClient) CancelOrder(ctx context.Context, id, symbol string) (*Order, error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   "/api/v3/order",
		Query:  c.signedQuery(map[string]string{"symbol": symbol, "orderId": id}),
		Auth:   c.signedAuth(),
	})
	if err != nil {
		return nil, fmt.Errorf("binance: cancel order %s: %w", id, err)
	}

	var o binanceOrder
	if err := json.Unmarshal(resp.Body, &o); err != nil {
		return nil, fmt.Errorf("binance: decode order: %w", err)
	}
	return o.toOrder(), nil
}

// FetchOrder returns one order by id.
func (c *BinanceClient) FetchOrder(ctx context.Context, id, symbol string) (*Order, error) {
	resp, err := resilience.Retry(ctx, c.retry, func() (*httpclient.Response, error) {
		return c.http.Do(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   "/api/v3/order",
			Query:  c.signedQuery(map[string]string{"symbol": symbol, "orderId": id}),
			Auth:   c.signedAuth(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("binance: fetch order %s: %w", id, err)
	}

	var o binanceOrder
	if err := json.Unmarshal(resp.Body, &o); err != nil {
		return nil, fmt.Errorf("binance: decode order: %w", err)
	}
	return o.toOrder(), nil
}

// FetchOpenOrders returns open orders, optionally filtered by symbol.
func (c *BinanceClient) FetchOpenOrders(ctx context.Context, symbol string) ([]Order, error) {
	q := map[string]string{}
	if symbol != "" {
		q["symbol"] = symbol
	}

	resp, err := resilience.Retry(ctx, c.retry, func() (*httpclient.Response, error) {
		return c.http.Do(ctx, httpclient.Request{
			Method: http.MethodGet,
			Path:   "/api/v3/openOrders",
			Query:  c.signedQuery(q),
			Auth:   c.signedAuth(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("binance: fetch open orders: %w", err)
	}

	var raw []binanceOrder
	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, fmt.Errorf("binance: decode open orders: %w", err)
	}

	orders := make([]Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, *o.toOrder())
	}
	return orders, nil
}

func binanceSide(s Side) string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

func binanceType(t OrderType) string {
	if t == OrderLimit {
		return "LIMIT"
	}
	return "MARKET"
}
