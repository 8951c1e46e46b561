// Package market provides the price-source collaborator consumed by
// price-check nodes. Sources are injected into the engine; caching is a
// source-level concern wrapped around any implementation and invisible to
// the engine.
package market
