package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/notification/application"
	"bazaar/internal/service/notification/domain"
)

// OrderEventConsumer pulls order events off kafka and hands them to the
// notification service. Poison messages are logged and committed so the
// partition keeps moving.
type OrderEventConsumer struct {
	reader  *kafka.Reader
	service *application.NotificationService
}

func NewOrderEventConsumer(reader *kafka.Reader, service *application.NotificationService) *OrderEventConsumer {
	return &OrderEventConsumer{reader: reader, service: service}
}

// Run consumes until ctx is cancelled.
func (c *OrderEventConsumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Ctx(ctx).Error().Err(err).Msg("fetch order event failed")
			continue
		}

		msgCtx := mq.Extract(ctx, msg)

		var event domain.OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Ctx(msgCtx).Error().Err(err).
				Str("key", string(msg.Key)).
				Msg("malformed order event, skipping")
		} else if err := c.service.HandleOrderCreated(msgCtx, &event); err != nil {
			logger.Ctx(msgCtx).Error().Err(err).
				Int64("order_id", event.OrderID).
				Msg("failed to process order event")
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Ctx(msgCtx).Error().Err(err).Msg("commit order event failed")
		}
	}
}

func (c *OrderEventConsumer) Close() error {
	return c.reader.Close()
}
