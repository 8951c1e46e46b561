// Package workflow defines the node-graph data model consumed by the
// execution engine: typed nodes, optionally-conditioned edges, the typed
// per-node configuration structs decoded from a node's raw data bag, plus
// loading from YAML/JSON files and structural validation.
//
// Nodes are read-only during execution. The engine reads configuration
// values out of a node's Data bag but never writes to it.
package workflow
