package market

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/jax-labs/apexflow/errors"
)

// StaticSource serves fixed quotes from memory. It backs paper-trading mode
// and tests, where runs must not depend on a live market feed.
type StaticSource struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

// NewStaticSource creates a source pre-loaded with the given prices.
func NewStaticSource(prices map[string]float64) *StaticSource {
	s := &StaticSource{quotes: make(map[string]*Quote, len(prices))}
	for symbol, price := range prices {
		s.SetPrice(symbol, price)
	}
	return s
}

// SetPrice installs or updates a quote for a symbol.
func (s *StaticSource) SetPrice(symbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[symbol] = &Quote{
		Symbol:    symbol,
		Price:     price,
		High24h:   price,
		Low24h:    price,
		Timestamp: time.Now(),
	}
}

// Quote implements Source.
func (s *StaticSource) Quote(_ context.Context, symbol string) (*Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quote, ok := s.quotes[symbol]
	if !ok {
		return nil, apperrors.PriceUnavailable(symbol, nil)
	}
	return quote, nil
}
