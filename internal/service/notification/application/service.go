package application

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/notification/domain"
)

var notificationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notifications_processed_total",
	Help: "Order events processed, labelled by what happened to them.",
}, []string{"outcome"})

// Pusher delivers a rendered notification to a connected user. Delivery
// is best effort; false means the user has no live connection.
type Pusher interface {
	Push(userID int64, message string) bool
}

// NoopPusher drops every push, for deployments without the ws gateway.
type NoopPusher struct{}

func (NoopPusher) Push(userID int64, message string) bool { return false }

// NotificationService turns order events into user notifications.
type NotificationService struct {
	rules  *domain.RuleSet
	pusher Pusher
	tracer trace.Tracer
}

func NewNotificationService(rules *domain.RuleSet, pusher Pusher, tracer trace.Tracer) *NotificationService {
	return &NotificationService{rules: rules, pusher: pusher, tracer: tracer}
}

// HandleOrderCreated filters the event through the rule set, then logs
// and pushes the rendered notification. The log line is the delivery of
// record; the websocket push is opportunistic.
func (s *NotificationService) HandleOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error {
	ctx, span := s.tracer.Start(ctx, "notification.HandleOrderCreated")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", event.OrderID),
		attribute.String("order.status", event.Status),
	)

	logger.Ctx(ctx).Info().
		Int64("order_id", event.OrderID).
		Int64("user_id", event.UserID).
		Int64("product_id", event.ProductID).
		Str("status", event.Status).
		Msg("received order event")

	match, err := s.rules.Matches(event)
	if err != nil {
		notificationsProcessed.WithLabelValues("error").Inc()
		span.RecordError(err)
		return err
	}
	if !match {
		notificationsProcessed.WithLabelValues("filtered").Inc()
		logger.Ctx(ctx).Debug().Int64("order_id", event.OrderID).Msg("event filtered by rules")
		return nil
	}

	message := event.Message()
	logger.Ctx(ctx).Info().Str("message", message).Msg("NOTIFICATION")

	if s.pusher.Push(event.UserID, message) {
		notificationsProcessed.WithLabelValues("pushed").Inc()
	} else {
		notificationsProcessed.WithLabelValues("logged").Inc()
	}
	return nil
}
