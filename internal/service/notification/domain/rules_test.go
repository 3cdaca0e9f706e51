package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(status string, quantity int, userID int64) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		OrderID:   1,
		UserID:    userID,
		ProductID: 7,
		Quantity:  quantity,
		Status:    status,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEmptyRuleSetMatchesEverything(t *testing.T) {
	rs, err := NewRuleSet(nil)
	require.NoError(t, err)

	match, err := rs.Matches(event("CONFIRMED", 1, 1))
	require.NoError(t, err)
	assert.True(t, match)
}

func TestRuleFiltersByStatus(t *testing.T) {
	rs, err := NewRuleSet([]string{`status != "CANCELLED"`})
	require.NoError(t, err)

	match, err := rs.Matches(event("CONFIRMED", 1, 1))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = rs.Matches(event("CANCELLED", 1, 1))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestAllRulesMustPass(t *testing.T) {
	rs, err := NewRuleSet([]string{
		`status == "CONFIRMED"`,
		`quantity >= 5`,
	})
	require.NoError(t, err)

	match, err := rs.Matches(event("CONFIRMED", 10, 1))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = rs.Matches(event("CONFIRMED", 2, 1))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestRuleOverUserID(t *testing.T) {
	rs, err := NewRuleSet([]string{`userId % 2 == 0`})
	require.NoError(t, err)

	match, err := rs.Matches(event("CONFIRMED", 1, 4))
	require.NoError(t, err)
	assert.True(t, match)

	match, err = rs.Matches(event("CONFIRMED", 1, 3))
	require.NoError(t, err)
	assert.False(t, match)
}

func TestCompileRejectsBadRules(t *testing.T) {
	_, err := NewRuleSet([]string{`status ==`})
	assert.Error(t, err)

	_, err = NewRuleSet([]string{`quantity + 1`})
	assert.Error(t, err, "non-bool expressions are rejected at compile time")
}

func TestMessageRendering(t *testing.T) {
	e := event("CONFIRMED", 3, 42)
	msg := e.Message()
	assert.Contains(t, msg, "Order #1 has been CONFIRMED")
	assert.Contains(t, msg, "Quantity: 3")
	assert.Contains(t, msg, "User ID: 42")
}
