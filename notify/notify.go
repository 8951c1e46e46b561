// Package notify fans workflow notifications out to delivery channels.
package notify

import (
	"context"
	"sync"

	"github.com/jax-labs/apexflow/logger"
)

// Notification is a message produced by a notification node.
type Notification struct {
	// Channel selects the delivery mechanism ("console", "slack", ...).
	Channel string `json:"channel"`
	// Message is the resolved notification text.
	Message string `json:"message"`
	// WorkflowID and ExecutionID identify the producing run.
	WorkflowID  string `json:"workflowId,omitempty"`
	ExecutionID string `json:"executionId,omitempty"`
}

// Notifier delivers notifications. Implementations should be tolerant of
// delivery problems; a notification must never take a workflow down with it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// LogNotifier writes notifications to the structured log. This is the
// "console" channel and the fallback for channels with no registered
// notifier. It never fails.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithComponent("notify")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, msg Notification) error {
	n.log.Info("notification", map[string]interface{}{
		"channel":                msg.Channel,
		"message":                msg.Message,
		logger.FieldWorkflowID:   msg.WorkflowID,
		logger.FieldExecutionID:  msg.ExecutionID,
	})
	return nil
}

// Router dispatches notifications by channel, falling back to a default
// notifier for unregistered channels.
type Router struct {
	mu       sync.RWMutex
	channels map[string]Notifier
	fallback Notifier
}

// NewRouter creates a router with the given fallback notifier.
func NewRouter(fallback Notifier) *Router {
	return &Router{
		channels: make(map[string]Notifier),
		fallback: fallback,
	}
}

// Register routes a channel name to a notifier.
func (r *Router) Register(channel string, n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[channel] = n
}

// Notify implements Notifier.
func (r *Router) Notify(ctx context.Context, msg Notification) error {
	r.mu.RLock()
	n, ok := r.channels[msg.Channel]
	r.mu.RUnlock()
	if !ok {
		n = r.fallback
	}
	return n.Notify(ctx, msg)
}

// Broadcaster fans each notification out to every member. Delivery is
// sequential; the first error is returned after all members were tried.
type Broadcaster struct {
	members []Notifier
}

// NewBroadcaster creates a broadcaster over the given notifiers.
func NewBroadcaster(members ...Notifier) *Broadcaster {
	return &Broadcaster{members: members}
}

// Add appends a member notifier.
func (b *Broadcaster) Add(n Notifier) {
	b.members = append(b.members, n)
}

// Notify implements Notifier.
func (b *Broadcaster) Notify(ctx context.Context, msg Notification) error {
	var firstErr error
	for _, n := range b.members {
		if err := n.Notify(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
