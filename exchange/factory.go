package exchange

import "fmt"

// FactoryConfig configures client construction for one venue.
type FactoryConfig struct {
	// BaseURL overrides the venue's default REST endpoint (testnets, tests).
	BaseURL string
}

// New constructs a Client for the given venue id.
//
// Binance is fully implemented. The remaining enum members are recognized as
// valid venues but have no REST binding yet.
// TODO: add endpoint tables for coinbase, kraken, bybit and okx.
func New(id ID, creds Credentials, cfg FactoryConfig) (Client, error) {
	switch id {
	case Binance:
		return NewBinance(creds, cfg), nil
	case Coinbase, Kraken, Bybit, OKX:
		return nil, fmt.Errorf("exchange: %s is recognized but not yet supported", id)
	default:
		return nil, fmt.Errorf("exchange: unknown exchange id %q", id)
	}
}
