package engine

import (
	"context"
	"io"
	"testing"

	"github.com/jax-labs/apexflow/exchange"
	"github.com/jax-labs/apexflow/logger"
	"github.com/jax-labs/apexflow/market"
	"github.com/jax-labs/apexflow/notify"
	"github.com/jax-labs/apexflow/workflow"
)

const sampleWorkflowPath = "../workflows/dip-buyer.yaml"

// sampleEngine builds an engine with a stub exchange registered under the
// "paper" id the sample references, at the given BTCUSDT price.
func sampleEngine(t *testing.T, price float64) (*Engine, *stubExchange) {
	t.Helper()

	stub := &stubExchange{}
	dir := exchange.NewDirectory()
	dir.Register("paper", stub, true)

	log := logger.NewWriter(io.Discard, "test")
	e := New(Deps{
		Prices:    market.NewStaticSource(map[string]float64{"BTCUSDT": price}),
		Exchanges: dir,
		Hooks:     &hookRecorder{},
		Notifier:  notify.NewLogNotifier(log),
		Logger:    log,
	}, Config{})
	return e, stub
}

func TestShippedSample_ValidatesClean(t *testing.T) {
	wf, err := workflow.LoadFile(sampleWorkflowPath)
	if err != nil {
		t.Fatalf("loading sample: %v", err)
	}
	if issues := workflow.Validate(wf); len(issues) != 0 {
		t.Fatalf("shipped sample must validate clean, got %v", issues)
	}
}

func TestShippedSample_BuysBelowThreshold(t *testing.T) {
	wf, err := workflow.LoadFile(sampleWorkflowPath)
	if err != nil {
		t.Fatalf("loading sample: %v", err)
	}

	e, stub := sampleEngine(t, 50000)
	result := e.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("execution failed: %s", result.Error)
	}

	if v := result.Output[ResultKey("is_dip")]; v != true {
		t.Fatalf("dip condition should be true at price 50000 < 55000, got %v", v)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one order, got %d", stub.calls)
	}
	if stub.lastParams.Side != exchange.SideBuy {
		t.Fatalf("unexpected side %q", stub.lastParams.Side)
	}
	if stub.lastParams.Amount != 0.01 {
		t.Fatalf("unexpected amount %v", stub.lastParams.Amount)
	}
	if !hasLog(result, "Bought the dip") {
		t.Fatalf("expected buy notification in logs, got %v", result.Logs)
	}
}

func TestShippedSample_SkipsBuyAboveThreshold(t *testing.T) {
	wf, err := workflow.LoadFile(sampleWorkflowPath)
	if err != nil {
		t.Fatalf("loading sample: %v", err)
	}

	e, stub := sampleEngine(t, 60000)
	result := e.Execute(context.Background(), wf)
	if !result.Success {
		t.Fatalf("execution failed: %s", result.Error)
	}

	if v := result.Output[ResultKey("is_dip")]; v != false {
		t.Fatalf("dip condition should be false at price 60000, got %v", v)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no orders above the threshold, got %d", stub.calls)
	}
	if !hasLog(result, "No dip today") {
		t.Fatalf("expected no-dip message in logs, got %v", result.Logs)
	}
}
