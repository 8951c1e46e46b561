package market

import (
	"context"
	"time"
)

// Quote is a point-in-time market snapshot for one symbol.
type Quote struct {
	Symbol           string    `json:"symbol"`
	Price            float64   `json:"price"`
	Change24h        float64   `json:"change24h"`
	ChangePercent24h float64   `json:"changePercent24h"`
	High24h          float64   `json:"high24h"`
	Low24h           float64   `json:"low24h"`
	Volume24h        float64   `json:"volume24h"`
	Timestamp        time.Time `json:"timestamp"`
}

// Source serves spot quotes for trading symbols.
type Source interface {
	// Quote returns the current quote for a symbol. Unknown symbols and
	// upstream failures surface as errors.
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, symbol string) (*Quote, error)

// Quote implements Source.
func (f SourceFunc) Quote(ctx context.Context, symbol string) (*Quote, error) {
	return f(ctx, symbol)
}
