package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/jax-labs/apexflow/errors"
	"github.com/jax-labs/apexflow/exchange"
	"github.com/jax-labs/apexflow/logger"
	"github.com/jax-labs/apexflow/market"
	"github.com/jax-labs/apexflow/notify"
	"github.com/jax-labs/apexflow/webhook"
	"github.com/jax-labs/apexflow/workflow"
)

const defaultMaxDepth = 256

// Deps are the external collaborators an Engine dispatches to. All of them
// are required; use the paper exchange client, static price source and a
// log notifier for offline setups.
type Deps struct {
	Prices    market.Source
	Exchanges *exchange.Directory
	Hooks     webhook.Sender
	Notifier  notify.Notifier
	Logger    *logger.Logger
}

// Config tunes engine behavior.
type Config struct {
	// MaxDepth bounds graph recursion. Zero means the default of 256.
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

// Engine executes workflows. It is safe for concurrent use; each Execute
// call runs with its own store and log, though nothing coordinates rate
// limits or exchange state across concurrent runs.
type Engine struct {
	prices    market.Source
	exchanges *exchange.Directory
	hooks     webhook.Sender
	notifier  notify.Notifier
	log       *logger.Logger
	tracer    trace.Tracer
	maxDepth  int

	sleep   func(context.Context, time.Duration) error
	newID   func() string
	nowFunc func() time.Time
}

// New creates an engine from its collaborators.
func New(deps Deps, cfg Config) *Engine {
	log := deps.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Engine{
		prices:    deps.Prices,
		exchanges: deps.Exchanges,
		hooks:     deps.Hooks,
		notifier:  deps.Notifier,
		log:       log.WithComponent("engine"),
		tracer:    otel.Tracer("apexflow/engine"),
		maxDepth:  maxDepth,
		sleep:     realSleep,
		newID:     uuid.NewString,
		nowFunc:   time.Now,
	}
}

// Result is the outcome of one execution. Logs are always populated;
// Output carries the final variable store only on success.
type Result struct {
	ExecutionID string         `json:"executionId"`
	WorkflowID  string         `json:"workflowId,omitempty"`
	Success     bool           `json:"success"`
	Error       string         `json:"error,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Logs        []LogEntry     `json:"logs"`
	Duration    time.Duration  `json:"duration"`
}

// run is the per-execution state threaded through the walker.
type run struct {
	id    string
	wf    *workflow.Workflow
	store *Store
	log   *RunLog
}

// Execute runs a workflow to completion. The run is all-or-nothing: the
// first dispatcher error aborts traversal and the error is folded into the
// returned Result rather than propagated. The caller always receives the
// full log history.
func (e *Engine) Execute(ctx context.Context, wf *workflow.Workflow) *Result {
	return e.ExecuteWith(ctx, wf, nil)
}

// ExecuteWith runs a workflow with the variable store seeded from initial.
// Nodes may shadow seeded values; last write wins.
func (e *Engine) ExecuteWith(ctx context.Context, wf *workflow.Workflow, initial map[string]any) *Result {
	execID := e.newID()
	started := e.nowFunc()

	runLogger := e.log.WithFields(map[string]interface{}{
		logger.FieldExecutionID: execID,
		logger.FieldWorkflowID:  wf.ID,
	})
	r := &run{
		id:    execID,
		wf:    wf,
		store: NewStore(initial),
		log:   NewRunLog(runLogger),
	}

	ctx, span := e.tracer.Start(ctx, "workflow.execute", trace.WithAttributes(
		attribute.String("workflow.id", wf.ID),
		attribute.String("workflow.execution_id", execID),
	))
	defer span.End()

	r.log.Infof("Starting workflow execution: %s", execID)

	err := e.execute(ctx, r)

	result := &Result{
		ExecutionID: execID,
		WorkflowID:  wf.ID,
		Duration:    e.nowFunc().Sub(started),
	}
	if err != nil {
		r.log.Errorf("Workflow execution failed: %v", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Error = err.Error()
	} else {
		r.log.Infof("Workflow execution completed: %s", execID)
		result.Success = true
		result.Output = r.store.Snapshot()
	}
	result.Logs = r.log.Entries()
	return result
}

// execute locates the start node and drives the walker from it.
func (e *Engine) execute(ctx context.Context, r *run) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperrors.Internal(nil).WithDetail("panic", rec)
		}
	}()

	start, ok := r.wf.StartNode()
	if !ok {
		return apperrors.StartNodeMissing(r.wf.ID)
	}
	return e.walk(ctx, r, start, 0)
}
