package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toolmarketplace/server/internal/models"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		ok       bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusPending, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusShipped, models.OrderStatusProcessing, false},
		{models.OrderStatusProcessing, models.OrderStatusPending, false},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, Terminal(models.OrderStatusDelivered))
	assert.True(t, Terminal(models.OrderStatusCancelled))
	assert.False(t, Terminal(models.OrderStatusPending))
	assert.False(t, Terminal(models.OrderStatusShipped))
}

func TestKnownStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		models.OrderStatusPending, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled,
	} {
		assert.True(t, KnownStatus(s), s)
	}
	assert.False(t, KnownStatus("returned"))
	assert.False(t, KnownStatus(""))
}
