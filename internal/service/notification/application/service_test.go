package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/notification/domain"
)

type recordingPusher struct {
	userIDs   []int64
	messages  []string
	connected bool
}

func (p *recordingPusher) Push(userID int64, message string) bool {
	p.userIDs = append(p.userIDs, userID)
	p.messages = append(p.messages, message)
	return p.connected
}

func mustRules(t *testing.T, exprs []string) *domain.RuleSet {
	t.Helper()
	rs, err := domain.NewRuleSet(exprs)
	require.NoError(t, err)
	return rs
}

func TestHandleOrderCreatedPushesToUser(t *testing.T) {
	pusher := &recordingPusher{connected: true}
	svc := NewNotificationService(mustRules(t, nil), pusher, otel.Tracer("test"))

	err := svc.HandleOrderCreated(context.Background(), &domain.OrderCreatedEvent{
		OrderID: 9, UserID: 42, ProductID: 7, Quantity: 2, Status: "CONFIRMED",
	})
	require.NoError(t, err)

	require.Len(t, pusher.messages, 1)
	assert.Equal(t, int64(42), pusher.userIDs[0])
	assert.Contains(t, pusher.messages[0], "Order #9 has been CONFIRMED")
}

func TestHandleOrderCreatedFilteredByRules(t *testing.T) {
	pusher := &recordingPusher{connected: true}
	svc := NewNotificationService(mustRules(t, []string{`status == "CONFIRMED"`}), pusher, otel.Tracer("test"))

	err := svc.HandleOrderCreated(context.Background(), &domain.OrderCreatedEvent{
		OrderID: 9, UserID: 42, Status: "PENDING",
	})
	require.NoError(t, err)
	assert.Empty(t, pusher.messages, "filtered events are not delivered")
}

func TestHandleOrderCreatedWithoutConnection(t *testing.T) {
	svc := NewNotificationService(mustRules(t, nil), NoopPusher{}, otel.Tracer("test"))

	// The log line is the delivery of record, so a missing connection is
	// not an error.
	err := svc.HandleOrderCreated(context.Background(), &domain.OrderCreatedEvent{
		OrderID: 9, UserID: 42, Status: "CONFIRMED",
	})
	assert.NoError(t, err)
}
