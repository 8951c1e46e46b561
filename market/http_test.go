package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSource_ParsesTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Fatalf("unexpected symbol %s", r.URL.Query().Get("symbol"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"symbol": "BTCUSDT",
			"lastPrice": "60123.45",
			"priceChange": "1200.00",
			"priceChangePercent": "2.04",
			"highPrice": "61000.00",
			"lowPrice": "58000.00",
			"volume": "12345.6",
			"closeTime": 1700000000000
		}`))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	quote, err := src.Quote(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Price != 60123.45 {
		t.Fatalf("unexpected price %v", quote.Price)
	}
	if quote.ChangePercent24h != 2.04 {
		t.Fatalf("unexpected change %v", quote.ChangePercent24h)
	}
	if quote.Timestamp.UnixMilli() != 1700000000000 {
		t.Fatalf("unexpected timestamp %v", quote.Timestamp)
	}
}

func TestHTTPSource_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": -1121, "msg": "Invalid symbol."}`))
	}))
	defer srv.Close()

	src, _ := NewHTTPSource(Config{BaseURL: srv.URL})
	_, err := src.Quote(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestHTTPSource_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"lastPrice": "not-a-number"}`))
	}))
	defer srv.Close()

	src, _ := NewHTTPSource(Config{BaseURL: srv.URL})
	if _, err := src.Quote(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("expected parse error")
	}
}
