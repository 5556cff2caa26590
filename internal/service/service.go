// Package service holds the task and habit use-cases behind the HTTP handlers.
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taskadee/pkg/logger"
)

// EventPublisher publishes domain events; *mq.Publisher implements it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ValidationError reports a bad client-supplied field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// publish sends an event after the write it describes has committed, so a broker
// failure is logged and swallowed.
func publish(ctx context.Context, p EventPublisher, log *zap.Logger, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, payload); err != nil {
		logger.WithTrace(ctx, log).Error("Failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
	}
}
