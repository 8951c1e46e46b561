// Package exchange provides the trading-venue collaborator used by
// place-order nodes: a common Client interface, a factory keyed by the
// closed venue enum, a Directory of configured venues consulted at dispatch
// time, a signed REST implementation for Binance, and an in-memory paper
// client for demo mode and tests.
package exchange
