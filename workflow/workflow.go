package workflow

import (
	"encoding/json"

	"go.yaml.in/yaml/v3"
)

// NodeType identifies the operation a node performs.
type NodeType string

// The closed set of node types understood by the engine. Unknown tags are
// tolerated at runtime (logged and skipped) so that builders can ship new
// node kinds ahead of engine upgrades.
const (
	NodeStart        NodeType = "start"
	NodePriceCheck   NodeType = "price-check"
	NodeCondition    NodeType = "condition"
	NodePlaceOrder   NodeType = "place-order"
	NodeWebhook      NodeType = "webhook"
	NodeNotification NodeType = "notification"
	NodeDelay        NodeType = "delay"
	NodeSetVariable  NodeType = "set-variable"
	NodeMessage      NodeType = "message"
)

// Known reports whether t is one of the recognized node types.
func (t NodeType) Known() bool {
	switch t {
	case NodeStart, NodePriceCheck, NodeCondition, NodePlaceOrder,
		NodeWebhook, NodeNotification, NodeDelay, NodeSetVariable, NodeMessage:
		return true
	}
	return false
}

// Node is a typed unit of work in the graph. Data holds the configuration
// fields specific to the node type; values may be literals or {{name}}
// references resolved at dispatch time.
type Node struct {
	ID   string         `json:"id" yaml:"id" validate:"required"`
	Type NodeType       `json:"type" yaml:"type" validate:"required"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Edge is a directed connection between two node ids. Condition, when set to
// "true" or "false", gates traversal against the source node's most recent
// stored boolean result.
type Edge struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Source    string `json:"source" yaml:"source" validate:"required"`
	Target    string `json:"target" yaml:"target" validate:"required"`
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty" validate:"omitempty,oneof=true false"`
}

// edgeWire mirrors Edge on the wire, accepting the condition either at the
// top level or nested under data (the flow-builder export shape).
type edgeWire struct {
	ID        string `json:"id" yaml:"id"`
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Condition string `json:"condition" yaml:"condition"`
	Data      struct {
		Condition string `json:"condition" yaml:"condition"`
	} `json:"data" yaml:"data"`
}

func (e *Edge) fromWire(w edgeWire) {
	e.ID = w.ID
	e.Source = w.Source
	e.Target = w.Target
	e.Condition = w.Condition
	if e.Condition == "" {
		e.Condition = w.Data.Condition
	}
}

// UnmarshalJSON accepts both {"condition": "..."} and {"data": {"condition": "..."}}.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.fromWire(w)
	return nil
}

// UnmarshalYAML accepts both condition shapes, mirroring UnmarshalJSON.
func (e *Edge) UnmarshalYAML(value *yaml.Node) error {
	var w edgeWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	e.fromWire(w)
	return nil
}

// Workflow is a directed graph of typed nodes.
type Workflow struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Edges []Edge `json:"edges" yaml:"edges" validate:"dive"`
}

// Node returns the node with the given id.
func (w *Workflow) Node(id string) (*Node, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// StartNode returns the first node declared with the start type.
func (w *Workflow) StartNode() (*Node, bool) {
	for i := range w.Nodes {
		if w.Nodes[i].Type == NodeStart {
			return &w.Nodes[i], true
		}
	}
	return nil, false
}

// EdgesFrom returns the outgoing edges of a node in declaration order.
// Declaration order is the defined tie-break for traversal.
func (w *Workflow) EdgesFrom(source string) []Edge {
	var out []Edge
	for _, e := range w.Edges {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}
