package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/jax-labs/apexflow/errors"
	"github.com/jax-labs/apexflow/httpclient"
)

const defaultBaseURL = "https://api.binance.com"

// Config configures the HTTP price source.
type Config struct {
	// BaseURL is the exchange public REST endpoint.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds each quote request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// CacheTTL controls the caching wrapper installed by NewCached.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Second
	}
}

// HTTPSource fetches quotes from an exchange's public 24hr ticker endpoint.
type HTTPSource struct {
	client *httpclient.Client
}

// NewHTTPSource creates a price source backed by the exchange REST API.
func NewHTTPSource(cfg Config) (*HTTPSource, error) {
	cfg.ApplyDefaults()
	client, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return nil, err
	}
	return &HTTPSource{client: client}, nil
}

// NewCached creates an HTTP source wrapped with the configured TTL cache.
func NewCached(cfg Config) (Source, error) {
	cfg.ApplyDefaults()
	src, err := NewHTTPSource(cfg)
	if err != nil {
		return nil, err
	}
	return NewCachingSource(src, cfg.CacheTTL), nil
}

// ticker24h mirrors the Binance /api/v3/ticker/24hr response. All numeric
// fields arrive as strings.
type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	CloseTime          int64  `json:"closeTime"`
}

// Quote implements Source.
func (s *HTTPSource) Quote(ctx context.Context, symbol string) (*Quote, error) {
	resp, err := s.client.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/api/v3/ticker/24hr",
		Query:  map[string]string{"symbol": symbol},
	})
	if err != nil {
		return nil, apperrors.PriceUnavailable(symbol, err)
	}

	var t ticker24h
	if err := json.Unmarshal(resp.Body, &t); err != nil {
		return nil, apperrors.PriceUnavailable(symbol, fmt.Errorf("decode ticker: %w", err))
	}

	price, err := strconv.ParseFloat(t.LastPrice, 64)
	if err != nil {
		return nil, apperrors.PriceUnavailable(symbol, fmt.Errorf("parse lastPrice %q: %w", t.LastPrice, err))
	}

	quote := &Quote{
		Symbol:           t.Symbol,
		Price:            price,
		Change24h:        parseFloatOrZero(t.PriceChange),
		ChangePercent24h: parseFloatOrZero(t.PriceChangePercent),
		High24h:          parseFloatOrZero(t.HighPrice),
		Low24h:           parseFloatOrZero(t.LowPrice),
		Volume24h:        parseFloatOrZero(t.Volume),
		Timestamp:        time.UnixMilli(t.CloseTime),
	}
	if quote.Timestamp.IsZero() || t.CloseTime == 0 {
		quote.Timestamp = time.Now()
	}
	return quote, nil
}

func parseFloatOrZero(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
