package mq

import (
	"context"

	"go.uber.org/zap"

	"taskadee/pkg/circuitbreaker"
	"taskadee/pkg/metrics"
)

type publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// GuardedPublisher 在 broker 连续失败后熔断，避免每个请求都等待发布超时
type GuardedPublisher struct {
	next publisher
	cb   *circuitbreaker.CircuitBreaker
}

func NewGuardedPublisher(next publisher, cfg circuitbreaker.Config, logger *zap.Logger) *GuardedPublisher {
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		metrics.SetPublisherBreakerState(int(to))
		logger.Warn("Event publisher circuit breaker state changed",
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	return &GuardedPublisher{next: next, cb: circuitbreaker.New(cfg)}
}

// Publish returns circuitbreaker.ErrOpen without contacting the broker while open.
func (g *GuardedPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return g.cb.Execute(func() error {
		return g.next.Publish(ctx, routingKey, payload)
	})
}
