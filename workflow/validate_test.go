package workflow

import (
	"strings"
	"testing"
)

func validWorkflow() *Workflow {
	return &Workflow{
		Nodes: []Node{
			{ID: "start-1", Type: NodeStart},
			{ID: "msg-1", Type: NodeMessage, Data: map[string]any{"message": "hi"}},
		},
		Edges: []Edge{{Source: "start-1", Target: "msg-1"}},
	}
}

func hasIssue(issues []Issue, level IssueLevel, substr string) bool {
	for _, i := range issues {
		if i.Level == level && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidate_Clean(t *testing.T) {
	if issues := Validate(validWorkflow()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestValidate_NoStartNode(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = wf.Nodes[1:]
	issues := Validate(wf)
	if !hasIssue(issues, LevelError, "no start node") {
		t.Fatalf("expected start-node error, got %v", issues)
	}
	if err := Check(wf); err == nil {
		t.Fatal("Check should fail without a start node")
	}
}

func TestValidate_MultipleStartNodes(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{ID: "start-2", Type: NodeStart})
	if !hasIssue(Validate(wf), LevelError, "start nodes") {
		t.Fatal("expected multiple-start error")
	}
}

func TestValidate_DuplicateNodeID(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{ID: "msg-1", Type: NodeMessage})
	if !hasIssue(Validate(wf), LevelError, "duplicate node id") {
		t.Fatal("expected duplicate-id error")
	}
}

func TestValidate_DanglingEdgeIsWarning(t *testing.T) {
	wf := validWorkflow()
	wf.Edges = append(wf.Edges, Edge{Source: "msg-1", Target: "ghost"})
	issues := Validate(wf)
	if !hasIssue(issues, LevelWarning, "unknown target") {
		t.Fatalf("expected dangling-edge warning, got %v", issues)
	}
	// Dangling edges are inert at runtime, so Check still passes.
	if err := Check(wf); err != nil {
		t.Fatalf("warnings must not fail Check: %v", err)
	}
}

func TestValidate_UnknownTypeIsWarning(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{ID: "x-1", Type: "teleport"})
	if !hasIssue(Validate(wf), LevelWarning, "unknown node type") {
		t.Fatal("expected unknown-type warning")
	}
}

func TestValidate_MissingNodeID(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{Type: NodeMessage})
	if !hasIssue(Validate(wf), LevelError, "required") {
		t.Fatal("expected required-field error for empty id")
	}
}

func TestValidate_BadEdgeCondition(t *testing.T) {
	wf := validWorkflow()
	wf.Edges[0].Condition = "maybe"
	if !hasIssue(Validate(wf), LevelError, "oneof") {
		t.Fatal("expected oneof error for bad condition value")
	}
}

func TestValidate_MissingRequiredDataField(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{
		ID:   "buy-1",
		Type: NodePlaceOrder,
		Data: map[string]any{"symbol": "BTCUSDT", "side": "buy", "amount": 0.01},
	})
	issues := Validate(wf)
	if !hasIssue(issues, LevelError, `missing required data field "exchangeId"`) {
		t.Fatalf("expected missing-exchangeId error, got %v", issues)
	}
	if err := Check(wf); err == nil {
		t.Fatal("Check should fail on a missing required data field")
	}
}

func TestValidate_TemplateValueSatisfiesRequiredField(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{
		ID:   "check-1",
		Type: NodePriceCheck,
		Data: map[string]any{"symbol": "{{pair}}"},
	})
	if issues := Validate(wf); len(issues) != 0 {
		t.Fatalf("template reference must count as present, got %v", issues)
	}
}

func TestValidate_RenamedDataFieldsAreFlagged(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes,
		Node{ID: "cond-1", Type: NodeCondition, Data: map[string]any{
			"left": "{{check_price}}", "operator": "<", "right": 55000,
		}},
		Node{ID: "buy-1", Type: NodePlaceOrder, Data: map[string]any{
			"exchange": "paper", "symbol": "BTCUSDT", "side": "buy",
			"type": "market", "amount": 0.01,
		}},
	)
	issues := Validate(wf)
	if !hasIssue(issues, LevelWarning, `unrecognized data field "left"`) {
		t.Fatalf("expected warning for renamed condition operand, got %v", issues)
	}
	if !hasIssue(issues, LevelWarning, `unrecognized data field "right"`) {
		t.Fatalf("expected warning for renamed condition operand, got %v", issues)
	}
	if !hasIssue(issues, LevelError, `missing required data field "exchangeId"`) {
		t.Fatalf("expected error for renamed exchange field, got %v", issues)
	}
	if !hasIssue(issues, LevelWarning, `unrecognized data field "type"`) {
		t.Fatalf("expected warning for renamed order type field, got %v", issues)
	}
}

func TestValidate_ConditionWithoutOperatorWarns(t *testing.T) {
	wf := validWorkflow()
	wf.Nodes = append(wf.Nodes, Node{
		ID:   "cond-1",
		Type: NodeCondition,
		Data: map[string]any{"leftValue": 1, "rightValue": 2},
	})
	issues := Validate(wf)
	if !hasIssue(issues, LevelWarning, "no operator") {
		t.Fatalf("expected no-operator warning, got %v", issues)
	}
	if err := Check(wf); err != nil {
		t.Fatalf("warnings must not fail Check: %v", err)
	}
}
