package engine

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jax-labs/apexflow/exchange"
	"github.com/jax-labs/apexflow/notify"
	"github.com/jax-labs/apexflow/workflow"
)

// dispatch resolves one node's configuration against the run's store and
// executes the handler for its type. Derived outputs land back in the store
// under the node's id. Unknown node types warn and succeed with no effect.
func (e *Engine) dispatch(ctx context.Context, r *run, node *workflow.Node) error {
	r.log.Infof("Executing node %s (%s)", node.ID, node.Type)

	ctx, span := e.tracer.Start(ctx, "node."+string(node.Type), trace.WithAttributes(
		attribute.String("workflow.node_id", node.ID),
		attribute.String("workflow.execution_id", r.id),
	))
	defer span.End()

	data := ResolveData(r.store, node.Data)

	var err error
	switch node.Type {
	case workflow.NodeStart:
		err = e.runStart(r, node.ID, data)
	case workflow.NodePriceCheck:
		err = e.runPriceCheck(ctx, r, node.ID, data)
	case workflow.NodeCondition:
		err = e.runCondition(r, node.ID, data)
	case workflow.NodePlaceOrder:
		err = e.runPlaceOrder(ctx, r, node.ID, data)
	case workflow.NodeWebhook:
		err = e.runWebhook(ctx, r, node.ID, data)
	case workflow.NodeNotification:
		err = e.runNotification(ctx, r, node.ID, data)
	case workflow.NodeDelay:
		err = e.runDelay(ctx, r, node.ID, data)
	case workflow.NodeSetVariable:
		err = e.runSetVariable(r, node.ID, data)
	case workflow.NodeMessage:
		err = e.runMessage(r, node.ID, data)
	default:
		r.log.Warnf("Unknown node type %q on node %s, skipping", node.Type, node.ID)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (e *Engine) runStart(r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeStart(nodeID, data)
	if err != nil {
		return err
	}
	if cfg.Message != "" {
		r.log.Infof("Start: %s", cfg.Message)
	}
	return nil
}

func (e *Engine) runPriceCheck(ctx context.Context, r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodePriceCheck(nodeID, data)
	if err != nil {
		return err
	}
	quote, err := e.prices.Quote(ctx, cfg.Symbol)
	if err != nil {
		return err
	}
	r.store.Set(PriceKey(nodeID), quote.Price)
	r.store.Set(DataKey(nodeID), quote)
	r.log.Infof("Price check: %s = %v", cfg.Symbol, quote.Price)
	return nil
}

func (e *Engine) runCondition(r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeCondition(nodeID, data)
	if err != nil {
		return err
	}
	result := compare(cfg.Left, cfg.Operator, cfg.Right)
	r.store.Set(ResultKey(nodeID), result)
	r.log.Infof("Condition: %v %s %v = %v", cfg.Left, cfg.Operator, cfg.Right, result)
	return nil
}

func (e *Engine) runPlaceOrder(ctx context.Context, r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodePlaceOrder(nodeID, data)
	if err != nil {
		return err
	}
	client, err := e.exchanges.Lookup(cfg.ExchangeID)
	if err != nil {
		return err
	}

	order, err := client.CreateOrder(ctx, exchange.OrderParams{
		Symbol: cfg.Symbol,
		Side:   exchange.Side(cfg.Side),
		Type:   exchange.OrderType(cfg.OrderType),
		Amount: cfg.Amount,
		Price:  cfg.Price,
	})
	if err != nil {
		return err
	}
	r.store.Set(OrderKey(nodeID), order)
	r.log.Infof("Order placed on %s: %s %s %v %s (id %s)",
		cfg.ExchangeID, cfg.Side, cfg.OrderType, cfg.Amount, cfg.Symbol, order.ID)
	return nil
}

func (e *Engine) runWebhook(ctx context.Context, r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeWebhook(nodeID, data)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"executionId": r.id,
		"workflowId":  r.wf.ID,
	}
	switch d := cfg.Data.(type) {
	case nil:
	case map[string]any:
		for k, v := range d {
			payload[k] = v
		}
	default:
		payload["data"] = d
	}

	if err := e.hooks.Send(ctx, cfg.URL, cfg.Event, payload); err != nil {
		return err
	}
	r.log.Infof("Webhook delivered: %s (%s)", cfg.URL, cfg.Event)
	return nil
}

func (e *Engine) runNotification(ctx context.Context, r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeNotification(nodeID, data)
	if err != nil {
		return err
	}
	notifyErr := e.notifier.Notify(ctx, notify.Notification{
		Channel:     cfg.Channel,
		Message:     cfg.Message,
		WorkflowID:  r.wf.ID,
		ExecutionID: r.id,
	})
	if notifyErr != nil {
		// Notifications are best-effort and never abort a run.
		r.log.Warnf("Notification delivery failed on %s: %v", cfg.Channel, notifyErr)
		return nil
	}
	r.log.Infof("Notification [%s]: %s", cfg.Channel, cfg.Message)
	return nil
}

func (e *Engine) runDelay(ctx context.Context, r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeDelay(nodeID, data)
	if err != nil {
		return err
	}
	r.log.Infof("Delaying for %v", cfg.Duration)
	return e.sleep(ctx, cfg.Duration)
}

func (e *Engine) runSetVariable(r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeSetVariable(nodeID, data)
	if err != nil {
		return err
	}
	r.store.Set(cfg.Name, cfg.Value)
	r.log.Infof("Set variable %s = %v", cfg.Name, cfg.Value)
	return nil
}

func (e *Engine) runMessage(r *run, nodeID string, data map[string]any) error {
	cfg, err := workflow.DecodeMessage(nodeID, data)
	if err != nil {
		return err
	}
	r.log.Infof("Message: %s", cfg.Message)
	return nil
}

// compare evaluates a condition node's operator. Ordering operators coerce
// both operands numerically and evaluate to false when either side is not a
// number. Equality compares numerically when both sides parse as numbers and
// by string rendering otherwise. Unknown operators evaluate to false rather
// than failing the run.
func compare(left any, operator string, right any) bool {
	switch operator {
	case ">", "<", ">=", "<=":
		l, lok := workflow.AsFloat(left)
		r, rok := workflow.AsFloat(right)
		if !lok || !rok {
			return false
		}
		switch operator {
		case ">":
			return l > r
		case "<":
			return l < r
		case ">=":
			return l >= r
		default:
			return l <= r
		}
	case "==":
		return looseEqual(left, right)
	case "!=":
		return !looseEqual(left, right)
	default:
		return false
	}
}

func looseEqual(left, right any) bool {
	if l, lok := workflow.AsFloat(left); lok {
		if r, rok := workflow.AsFloat(right); rok {
			return l == r
		}
	}
	return workflow.AsString(left) == workflow.AsString(right)
}

// realSleep suspends until the duration elapses or ctx is canceled.
func realSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("delay interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
