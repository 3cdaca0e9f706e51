package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/order/domain"
)

// KafkaEventPublisher implements port.EventPublisher on the order-events
// topic. Messages are keyed by order id so one order's events stay on one
// partition.
type KafkaEventPublisher struct {
	writer *kafka.Writer
}

func NewKafkaEventPublisher(writer *kafka.Writer) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

func (p *KafkaEventPublisher) PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := []byte(strconv.FormatInt(event.OrderID, 10))
	return mq.Produce(ctx, p.writer, key, payload)
}

func (p *KafkaEventPublisher) Close() error { return p.writer.Close() }
