package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func verifySignature(t *testing.T, r *http.Request, secret string) {
	t.Helper()
	raw := r.URL.RawQuery
	idx := strings.LastIndex(raw, "&signature=")
	if idx < 0 {
		t.Fatal("request has no signature parameter")
	}
	payload, sig := raw[:idx], raw[idx+len("&signature="):]

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	if want := hex.EncodeToString(mac.Sum(nil)); sig != want {
		t.Fatalf("bad signature %s, want %s", sig, want)
	}
}

func TestBinanceClient_FetchBalanceSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/account" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "test-key" {
			t.Fatalf("missing api key header, got %q", r.Header.Get("X-MBX-APIKEY"))
		}
		q := r.URL.Query()
		if q.Get("timestamp") == "" || q.Get("recvWindow") != binanceRecvWindow {
			t.Fatalf("missing signed query params: %s", r.URL.RawQuery)
		}
		verifySignature(t, r, "test-secret")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"balances": [
			{"asset": "BTC", "free": "0.5", "locked": "0.1"},
			{"asset": "DUST", "free": "0", "locked": "0"}
		]}`))
	}))
	defer srv.Close()

	c := NewBinance(Credentials{APIKey: "test-key", APISecret: "test-secret"}, FactoryConfig{BaseURL: srv.URL})
	c.nowFunc = func() time.Time { return time.UnixMilli(1700000000000) }

	balances, err := c.FetchBalance(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected zero balances dropped, got %v", balances)
	}
	b := balances["BTC"]
	if b.Free != 0.5 || b.Used != 0.1 || b.Total != 0.6 {
		t.Fatalf("unexpected balance %+v", b)
	}
}

func TestBinanceClient_FetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-MBX-APIKEY") != "" {
			t.Fatal("public endpoint must not be signed")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "BTCUSDT",
			"bidPrice": "59999.00",
			"askPrice": "60001.00",
			"lastPrice": "60000.00",
			"highPrice": "61000.00",
			"lowPrice": "58000.00",
			"volume": "1000.5",
			"closeTime": 1700000000000
		}`))
	}))
	defer srv.Close()

	c := NewBinance(Credentials{}, FactoryConfig{BaseURL: srv.URL})
	ticker, err := c.FetchTicker(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker.Last != 60000 || ticker.Bid != 59999 || ticker.Ask != 60001 {
		t.Fatalf("unexpected ticker %+v", ticker)
	}
	if ticker.Timestamp.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected timestamp %v", ticker.Timestamp)
	}
}

func TestBinanceClient_CreateOrderMapsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v3/order" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTCUSDT" || q.Get("side") != "BUY" || q.Get("type") != "MARKET" {
			t.Fatalf("unexpected order params: %s", r.URL.RawQuery)
		}
		if q.Get("quantity") != "0.25" {
			t.Fatalf("unexpected quantity %s", q.Get("quantity"))
		}
		verifySignature(t, r, "s")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"orderId": 12345,
			"symbol": "BTCUSDT",
			"side": "BUY",
			"type": "MARKET",
			"origQty": "0.25",
			"price": "0",
			"status": "FILLED",
			"transactTime": 1700000000000
		}`))
	}))
	defer srv.Close()

	c := NewBinance(Credentials{APIKey: "k", APISecret: "s"}, FactoryConfig{BaseURL: srv.URL})
	order, err := c.CreateOrder(context.Background(), OrderParams{
		Symbol: "BTCUSDT",
		Side:   SideBuy,
		Type:   OrderMarket,
		Amount: 0.25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "12345" {
		t.Fatalf("unexpected id %s", order.ID)
	}
	if order.Status != StatusClosed {
		t.Fatalf("expected closed, got %s", order.Status)
	}
	if order.Amount != 0.25 {
		t.Fatalf("unexpected amount %v", order.Amount)
	}
}

func TestBinanceClient_CreateOrderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": -2010, "msg": "Account has insufficient balance."}`))
	}))
	defer srv.Close()

	c := NewBinance(Credentials{APIKey: "k", APISecret: "s"}, FactoryConfig{BaseURL: srv.URL})
	_, err := c.CreateOrder(context.Background(), OrderParams{
		Symbol: "BTCUSDT",
		Side:   SideBuy,
		Type:   OrderMarket,
		Amount: 100,
	})
	if err == nil {
		t.Fatal("expected rejection error")
	}
}

func TestBinanceClient_StatusMapping(t *testing.T) {
	cases := []struct {
		venue string
		want  OrderStatus
	}{
		{"NEW", StatusOpen},
		{"PARTIALLY_FILLED", StatusOpen},
		{"FILLED", StatusClosed},
		{"CANCELED", StatusCanceled},
		{"REJECTED", StatusCanceled},
		{"EXPIRED", StatusCanceled},
	}
	for _, tc := range cases {
		o := binanceOrder{Status: tc.venue}
		if got := o.toOrder().Status; got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.venue, got, tc.want)
		}
	}
}
