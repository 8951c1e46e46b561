package workflow

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jax-labs/apexflow/errors"
)

var validate = validator.New()

// IssueLevel grades a validation finding.
type IssueLevel string

const (
	// LevelError marks findings that make a workflow unrunnable.
	LevelError IssueLevel = "error"
	// LevelWarning marks findings the engine tolerates at runtime
	// (unknown node types, dangling edges).
	LevelWarning IssueLevel = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Level   IssueLevel `json:"level"`
	NodeID  string     `json:"nodeId,omitempty"`
	Message string     `json:"message"`
}

// nodeDataKeys describes, per node type, which data fields the dispatcher
// requires and which it recognizes. Required keys must be present (their
// values may still be {{...}} references); anything outside the known set
// is flagged so renamed fields do not silently decode to zero values.
var nodeDataKeys = map[NodeType]struct {
	required []string
	optional []string
}{
	NodeStart:        {optional: []string{"message"}},
	NodePriceCheck:   {required: []string{"symbol"}},
	NodeCondition:    {optional: []string{"leftValue", "operator", "rightValue"}},
	NodePlaceOrder:   {required: []string{"exchangeId", "symbol", "side", "amount"}, optional: []string{"orderType", "price"}},
	NodeWebhook:      {required: []string{"webhookUrl"}, optional: []string{"event", "data"}},
	NodeNotification: {optional: []string{"message", "channel"}},
	NodeDelay:        {optional: []string{"delay"}},
	NodeSetVariable:  {required: []string{"variableName"}, optional: []string{"value"}},
	NodeMessage:      {optional: []string{"message"}},
}

// checkNodeData reports missing required fields (the run would abort with
// MISSING_FIELD) and unrecognized fields (the dispatcher would ignore them).
func checkNodeData(n Node) []Issue {
	keys, ok := nodeDataKeys[n.Type]
	if !ok {
		return nil
	}

	var issues []Issue
	known := make(map[string]bool, len(keys.required)+len(keys.optional))
	for _, k := range keys.required {
		known[k] = true
		if _, present := n.Data[k]; !present {
			issues = append(issues, Issue{
				Level:   LevelError,
				NodeID:  n.ID,
				Message: fmt.Sprintf("%s node is missing required data field %q", n.Type, k),
			})
		}
	}
	for _, k := range keys.optional {
		known[k] = true
	}
	for k := range n.Data {
		if !known[k] {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				NodeID:  n.ID,
				Message: fmt.Sprintf("unrecognized data field %q on %s node; it will be ignored", k, n.Type),
			})
		}
	}

	if n.Type == NodeCondition {
		if op, present := n.Data["operator"]; !present || AsString(op) == "" {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				NodeID:  n.ID,
				Message: "condition node has no operator; it will always evaluate to false",
			})
		}
	}
	return issues
}

// Validate inspects a workflow and returns all findings. An empty slice
// means the workflow is clean.
func Validate(wf *Workflow) []Issue {
	var issues []Issue

	if err := validate.Struct(wf); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				issues = append(issues, Issue{
					Level:   LevelError,
					Message: fmt.Sprintf("field %s failed %q validation", ve.Namespace(), ve.Tag()),
				})
			}
		} else {
			issues = append(issues, Issue{Level: LevelError, Message: err.Error()})
		}
	}

	seen := make(map[string]bool, len(wf.Nodes))
	starts := 0
	for _, n := range wf.Nodes {
		if seen[n.ID] {
			issues = append(issues, Issue{
				Level:   LevelError,
				NodeID:  n.ID,
				Message: fmt.Sprintf("duplicate node id %q", n.ID),
			})
		}
		seen[n.ID] = true

		if n.Type == NodeStart {
			starts++
		}
		if !n.Type.Known() {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				NodeID:  n.ID,
				Message: fmt.Sprintf("unknown node type %q; the node will be skipped at runtime", n.Type),
			})
		}
		issues = append(issues, checkNodeData(n)...)
	}

	switch {
	case starts == 0:
		issues = append(issues, Issue{Level: LevelError, Message: "workflow has no start node"})
	case starts > 1:
		issues = append(issues, Issue{Level: LevelError, Message: fmt.Sprintf("workflow has %d start nodes, expected exactly one", starts)})
	}

	for i, e := range wf.Edges {
		if !seen[e.Source] {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				Message: fmt.Sprintf("edge %d references unknown source %q; the edge is inert", i, e.Source),
			})
		}
		if !seen[e.Target] {
			issues = append(issues, Issue{
				Level:   LevelWarning,
				Message: fmt.Sprintf("edge %d references unknown target %q; the edge is inert", i, e.Target),
			})
		}
	}

	return issues
}

// Check returns an INVALID_WORKFLOW error when any error-level issue exists.
// Warnings alone do not fail the check.
func Check(wf *Workflow) error {
	for _, issue := range Validate(wf) {
		if issue.Level == LevelError {
			return apperrors.InvalidWorkflow(issue.Message)
		}
	}
	return nil
}
