package engine

import (
	"context"

	apperrors "github.com/jax-labs/apexflow/errors"
	"github.com/jax-labs/apexflow/workflow"
)

// walk dispatches node and recurses depth-first into its successors.
// Outgoing edges are followed in declaration order, one branch at a time.
// Workflows are not guaranteed acyclic by the builder, so a depth guard
// bounds the recursion and turns a cycle into a structured error instead of
// a blown stack.
func (e *Engine) walk(ctx context.Context, r *run, node *workflow.Node, depth int) error {
	if depth >= e.maxDepth {
		return apperrors.DepthExceeded(node.ID, e.maxDepth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.dispatch(ctx, r, node); err != nil {
		return err
	}

	for _, edge := range r.wf.EdgesFrom(node.ID) {
		if edge.Condition != "" && !e.edgeOpen(r, node.ID, edge) {
			continue
		}
		target, ok := r.wf.Node(edge.Target)
		if !ok {
			// Dangling edges are inert.
			continue
		}
		if err := e.walk(ctx, r, target, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// edgeOpen checks a conditional edge against the source node's stored
// boolean result. A missing or non-boolean result never matches, so the
// edge is skipped.
func (e *Engine) edgeOpen(r *run, sourceID string, edge workflow.Edge) bool {
	want := edge.Condition == "true"
	stored, ok := r.store.Get(ResultKey(sourceID))
	if !ok {
		r.log.Infof("Skipping edge %s -> %s: no condition result for %s", edge.Source, edge.Target, sourceID)
		return false
	}
	result, ok := stored.(bool)
	if !ok || result != want {
		r.log.Infof("Skipping edge %s -> %s: condition %q not met", edge.Source, edge.Target, edge.Condition)
		return false
	}
	return true
}
