package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback run during shutdown.
type Hook func(ctx context.Context) error

// OnStop registers a hook that runs during graceful shutdown before the
// server is stopped. Use this for cleanup like canceling open paper orders.
func (a *App) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
