package cluster

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier reports defaulted parameters as info log lines.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs msg.
func (n LogNotifier) Notify(_ context.Context, msg string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Info(msg)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }
