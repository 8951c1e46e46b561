package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jax-labs/apexflow/exchange"
	"github.com/jax-labs/apexflow/logger"
	"github.com/jax-labs/apexflow/market"
	"github.com/jax-labs/apexflow/notify"
	"github.com/jax-labs/apexflow/webhook"
	"github.com/jax-labs/apexflow/workflow"
)

// stubExchange records CreateOrder calls for assertions.
type stubExchange struct {
	calls      int
	lastParams exchange.OrderParams
	err        error
}

func (s *stubExchange) FetchBalance(context.Context) (map[string]exchange.Balance, error) {
	return nil, nil
}

func (s *stubExchange) FetchTicker(context.Context, string) (*exchange.Ticker, error) {
	return nil, nil
}

func (s *stubExchange) CreateOrder(_ context.Context, params exchange.OrderParams) (*exchange.Order, error) {
	s.calls++
	s.lastParams = params
	if s.err != nil {
		return nil, s.err
	}
	return &exchange.Order{
		ID:     "stub-1",
		Symbol: params.Symbol,
		Side:   params.Side,
		Type:   params.Type,
		Amount: params.Amount,
		Status: exchange.StatusClosed,
	}, nil
}

func (s *stubExchange) CancelOrder(context.Context, string, string) (*exchange.Order, error) {
	return nil, nil
}

func (s *stubExchange) FetchOrder(context.Context, string, string) (*exchange.Order, error) {
	return nil, nil
}

func (s *stubExchange) FetchOpenOrders(context.Context, string) ([]exchange.Order, error) {
	return nil, nil
}

type testHarness struct {
	engine   *Engine
	exchange *stubExchange
	prices   *market.StaticSource
	hooks    *hookRecorder
	slept    []time.Duration
}

type hookRecorder struct {
	calls []string
	err   error
}

func (h *hookRecorder) Send(_ context.Context, url, event string, _ map[string]any) error {
	h.calls = append(h.calls, url+" "+event)
	return h.err
}

func newHarness(cfg Config) *testHarness {
	h := &testHarness{
		exchange: &stubExchange{},
		prices:   market.NewStaticSource(map[string]float64{"BTCUSDT": 60000}),
		hooks:    &hookRecorder{},
	}

	dir := exchange.NewDirectory()
	dir.Register("my-binance", h.exchange, true)
	dir.Register("retired", h.exchange, false)

	log := logger.NewWriter(io.Discard, "test")
	h.engine = New(Deps{
		Prices:    h.prices,
		Exchanges: dir,
		Hooks:     h.hooks,
		Notifier:  notify.NewLogNotifier(log),
		Logger:    log,
	}, cfg)
	h.engine.sleep = func(_ context.Context, d time.Duration) error {
		h.slept = append(h.slept, d)
		return nil
	}
	return h
}

func hasLog(result *Result, substr string) bool {
	for _, e := range result.Logs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestExecute_MissingStartNode(t *testing.T) {
	h := newHarness(Config{})
	result := h.engine.Execute(context.Background(), &workflow.Workflow{
		ID:    "wf-1",
		Nodes: []workflow.Node{{ID: "a", Type: workflow.NodeMessage}},
	})

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Error == "" {
		t.Fatal("expected a non-empty error")
	}
	if !hasLog(result, "Starting workflow execution") {
		t.Fatal("logs must contain the start-of-run marker")
	}
	if result.Output != nil {
		t.Fatal("no output snapshot on failure")
	}
}

func TestExecute_ConditionalEdgeTaken(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		ID: "wf-cond",
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "a", Type: workflow.NodeCondition, Data: map[string]any{
				"leftValue": 10, "operator": ">", "rightValue": 5,
			}},
			{ID: "b", Type: workflow.NodeMessage, Data: map[string]any{"message": "reached-b"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "a"},
			{Source: "a", Target: "b", Condition: "true"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if !hasLog(result, "reached-b") {
		t.Fatal("expected b to be visited when condition matches")
	}
	if result.Output[ResultKey("a")] != true {
		t.Fatalf("expected stored condition result true, got %v", result.Output[ResultKey("a")])
	}
}

func TestExecute_ConditionalEdgeSkipped(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		ID: "wf-cond",
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "a", Type: workflow.NodeCondition, Data: map[string]any{
				"leftValue": 10, "operator": ">", "rightValue": 5,
			}},
			{ID: "b", Type: workflow.NodeMessage, Data: map[string]any{"message": "reached-b"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "a"},
			{Source: "a", Target: "b", Condition: "false"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if hasLog(result, "reached-b") {
		t.Fatal("b must not be visited when the edge condition does not match")
	}
}

func TestExecute_ConditionalEdgeWithoutResultSkipped(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "b", Type: workflow.NodeMessage, Data: map[string]any{"message": "reached-b"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "b", Condition: "true"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if hasLog(result, "reached-b") {
		t.Fatal("a conditional edge with no stored result must be skipped")
	}
}

func TestExecute_UnknownExchangeNamedInError(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "o", Type: workflow.NodePlaceOrder, Data: map[string]any{
				"exchangeId": "ghost", "symbol": "BTCUSDT", "side": "buy", "amount": 0.1,
			}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "o"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "ghost") {
		t.Fatalf("error must name the missing exchange id, got %q", result.Error)
	}
	if h.exchange.calls != 0 {
		t.Fatalf("no order creation may be attempted, got %d calls", h.exchange.calls)
	}
}

func TestExecute_InactiveExchangeAborts(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "o", Type: workflow.NodePlaceOrder, Data: map[string]any{
				"exchangeId": "retired", "symbol": "BTCUSDT", "side": "buy", "amount": 0.1,
			}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "o"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if result.Success {
		t.Fatal("expected failure")
	}
	if h.exchange.calls != 0 {
		t.Fatalf("inactive exchange must not be called, got %d calls", h.exchange.calls)
	}
}

func TestExecute_RerunIssuesNewOrders(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "o", Type: workflow.NodePlaceOrder, Data: map[string]any{
				"exchangeId": "my-binance", "symbol": "BTCUSDT", "side": "buy", "amount": 0.1,
			}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "o"}},
	}

	first := h.engine.Execute(context.Background(), wf)
	second := h.engine.Execute(context.Background(), wf)
	if !first.Success || !second.Success {
		t.Fatalf("unexpected failure: %s / %s", first.Error, second.Error)
	}
	if h.exchange.calls != 2 {
		t.Fatalf("expected 2 order calls across 2 runs, got %d", h.exchange.calls)
	}
	if first.ExecutionID == second.ExecutionID {
		t.Fatal("each run must get its own execution id")
	}
}

func TestExecute_EndToEndTradingPath(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		ID: "wf-e2e",
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart, Data: map[string]any{"message": "kickoff"}},
			{ID: "check", Type: workflow.NodePriceCheck, Data: map[string]any{"symbol": "BTCUSDT"}},
			{ID: "gate", Type: workflow.NodeCondition, Data: map[string]any{
				"leftValue": "{{check_price}}", "operator": ">", "rightValue": 50000,
			}},
			{ID: "buy", Type: workflow.NodePlaceOrder, Data: map[string]any{
				"exchangeId": "my-binance", "symbol": "BTCUSDT", "side": "buy",
				"orderType": "market", "amount": 0.01,
			}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "check"},
			{Source: "check", Target: "gate"},
			{Source: "gate", Target: "buy", Condition: "true"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if h.exchange.calls != 1 {
		t.Fatalf("expected exactly one order, got %d", h.exchange.calls)
	}
	if h.exchange.lastParams.Side != exchange.SideBuy {
		t.Fatalf("unexpected side %s", h.exchange.lastParams.Side)
	}
	if h.exchange.lastParams.Amount != 0.01 {
		t.Fatalf("unexpected amount %v", h.exchange.lastParams.Amount)
	}
	if result.Output[PriceKey("check")] != 60000.0 {
		t.Fatalf("expected stored price 60000, got %v", result.Output[PriceKey("check")])
	}
	if result.Output[ResultKey("gate")] != true {
		t.Fatalf("expected condition result true, got %v", result.Output[ResultKey("gate")])
	}
	if _, ok := result.Output[OrderKey("buy")]; !ok {
		t.Fatal("expected stored order record")
	}
}

func TestExecute_UnknownNodeTypeContinues(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "m", Type: "mystery"},
			{ID: "b", Type: workflow.NodeMessage, Data: map[string]any{"message": "after-mystery"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "m"},
			{Source: "m", Target: "b"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if !hasLog(result, "Unknown node type") {
		t.Fatal("expected a warning about the unknown type")
	}
	if !hasLog(result, "after-mystery") {
		t.Fatal("traversal must continue past an unknown node type")
	}
}

func TestExecute_CycleHitsDepthGuard(t *testing.T) {
	h := newHarness(Config{MaxDepth: 10})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "loop", Type: workflow.NodeMessage, Data: map[string]any{"message": "again"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "loop"},
			{Source: "loop", Target: "loop"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if result.Success {
		t.Fatal("expected cycle to fail the run")
	}
	if !strings.Contains(result.Error, "depth") {
		t.Fatalf("expected depth error, got %q", result.Error)
	}
}

func TestExecute_DanglingEdgeIsInert(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{{ID: "s", Type: workflow.NodeStart}},
		Edges: []workflow.Edge{{Source: "s", Target: "nowhere"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("dangling edge must not fail the run: %s", result.Error)
	}
}

func TestExecute_SetVariableFeedsTemplates(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "set", Type: workflow.NodeSetVariable, Data: map[string]any{
				"variableName": "target", "value": "moon",
			}},
			{ID: "msg", Type: workflow.NodeMessage, Data: map[string]any{"message": "{{target}}"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "set"},
			{Source: "set", Target: "msg"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if !hasLog(result, "Message: moon") {
		t.Fatal("expected template to resolve the variable set upstream")
	}
	if result.Output["target"] != "moon" {
		t.Fatalf("expected variable in output, got %v", result.Output["target"])
	}
}

func TestExecute_SetVariableMissingNameAborts(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "set", Type: workflow.NodeSetVariable, Data: map[string]any{"value": 1}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "set"}},
	}

	if result := h.engine.Execute(context.Background(), wf); result.Success {
		t.Fatal("expected missing variableName to fail the run")
	}
}

func TestExecute_WebhookFailureAborts(t *testing.T) {
	h := newHarness(Config{})
	h.hooks.err = errors.New("boom")
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "w", Type: workflow.NodeWebhook, Data: map[string]any{
				"webhookUrl": "https://example.com/hook",
			}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "w"}},
	}

	if result := h.engine.Execute(context.Background(), wf); result.Success {
		t.Fatal("expected webhook failure to abort the run")
	}
}

func TestExecute_WebhookDelivered(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "w", Type: workflow.NodeWebhook, Data: map[string]any{
				"webhookUrl": "https://example.com/hook", "event": "order.placed",
			}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "w"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if len(h.hooks.calls) != 1 || h.hooks.calls[0] != "https://example.com/hook order.placed" {
		t.Fatalf("unexpected webhook calls %v", h.hooks.calls)
	}
}

func TestExecute_DelayDefaultsToOneSecond(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "d", Type: workflow.NodeDelay},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "d"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}
	if len(h.slept) != 1 || h.slept[0] != time.Second {
		t.Fatalf("expected one 1s delay, got %v", h.slept)
	}
}

func TestExecute_NotificationFailureDoesNotAbort(t *testing.T) {
	h := newHarness(Config{})
	failing := notify.NotifierFunc(func(context.Context, notify.Notification) error {
		return errors.New("channel down")
	})
	h.engine.notifier = failing

	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "n", Type: workflow.NodeNotification, Data: map[string]any{"message": "hi"}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "n"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("notification failure must not abort the run: %s", result.Error)
	}
}

func TestExecute_PriceCheckMissingSymbolAborts(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "p", Type: workflow.NodePriceCheck},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "p"}},
	}

	result := h.engine.Execute(context.Background(), wf)
	if result.Success {
		t.Fatal("expected missing symbol to fail the run")
	}
	if !strings.Contains(result.Error, "symbol") {
		t.Fatalf("expected error to name the field, got %q", result.Error)
	}
}

func TestExecute_SiblingBranchesRunInEdgeOrder(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "b1", Type: workflow.NodeMessage, Data: map[string]any{"message": "branch-one"}},
			{ID: "b2", Type: workflow.NodeMessage, Data: map[string]any{"message": "branch-two"}},
		},
		Edges: []workflow.Edge{
			{Source: "s", Target: "b2"},
			{Source: "s", Target: "b1"},
		},
	}

	result := h.engine.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("unexpected failure: %s", result.Error)
	}

	var order []string
	for _, e := range result.Logs {
		if strings.Contains(e.Message, "branch-") {
			order = append(order, e.Message)
		}
	}
	if len(order) != 2 || !strings.Contains(order[0], "branch-two") || !strings.Contains(order[1], "branch-one") {
		t.Fatalf("expected declaration-order traversal, got %v", order)
	}
}

func TestExecute_CancelledContextAborts(t *testing.T) {
	h := newHarness(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wf := &workflow.Workflow{
		Nodes: []workflow.Node{{ID: "s", Type: workflow.NodeStart}},
	}
	if result := h.engine.Execute(ctx, wf); result.Success {
		t.Fatal("expected cancelled context to fail the run")
	}
}

func TestExecuteWith_SeedsInitialVariables(t *testing.T) {
	h := newHarness(Config{})
	wf := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "s", Type: workflow.NodeStart},
			{ID: "m", Type: workflow.NodeMessage, Data: map[string]any{"message": "{{greeting}}"}},
		},
		Edges: []workflow.Edge{{Source: "s", Target: "m"}},
	}

	result := h.engine.ExecuteWith(context.Background(), wf, map[string]any{"greeting": "hello"})
	if !result.Success {
		t.Fatalf("execution failed: %s", result.Error)
	}
	if !hasLog(result, "Message: hello") {
		t.Fatalf("seeded variable not resolved, logs: %v", result.Logs)
	}
	if result.Output["greeting"] != "hello" {
		t.Fatalf("seeded variable missing from output: %v", result.Output)
	}
}

var _ webhook.Sender = (*hookRecorder)(nil)
var _ exchange.Client = (*stubExchange)(nil)
