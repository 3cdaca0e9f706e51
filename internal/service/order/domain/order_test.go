package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderStartsPending(t *testing.T) {
	o, err := NewOrder(1, 7, 4)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Zero(t, o.ID, "identity is assigned by the repository")
}

func TestNewOrderRejectsMissingFields(t *testing.T) {
	_, err := NewOrder(0, 7, 4)
	assert.Error(t, err)
	_, err = NewOrder(1, 7, 0)
	assert.Error(t, err)
}

func TestStatusTransitionsAreMonotonic(t *testing.T) {
	o, _ := NewOrder(1, 7, 4)

	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusConfirmed, o.Status)

	// No way back out of a terminal state.
	require.NoError(t, o.Cancel())
	err := o.Confirm()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusCancelled, o.Status)
}

func TestCancelledOrderCannotBeCancelledAgain(t *testing.T) {
	o, _ := NewOrder(1, 7, 4)
	require.NoError(t, o.Cancel())
	assert.ErrorIs(t, o.Cancel(), ErrInvalidTransition)
}

func TestStatusTable(t *testing.T) {
	assert.Equal(t, "Pending", StatusPending.DisplayName())
	assert.True(t, StatusPending.CanTransition(StatusConfirmed))
	assert.True(t, StatusPending.CanTransition(StatusCancelled))
	assert.False(t, StatusPending.CanTransition(StatusDelivered))
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
}
