package order

import "github.com/toolmarketplace/server/internal/models"

// validNext encodes the fulfillment chain. Cancellation is reachable from
// every non-terminal state; delivered and cancelled have no way out.
var validNext = map[string]map[string]bool{
	models.OrderStatusPending: {
		models.OrderStatusProcessing: true,
		models.OrderStatusShipped:    true,
		models.OrderStatusDelivered:  true,
		models.OrderStatusCancelled:  true,
	},
	models.OrderStatusProcessing: {
		models.OrderStatusShipped:   true,
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusShipped: {
		models.OrderStatusDelivered: true,
		models.OrderStatusCancelled: true,
	},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

func KnownStatus(s string) bool {
	_, ok := validNext[s]
	return ok
}

func Terminal(s string) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}

func CanTransition(from, to string) bool {
	return validNext[from][to]
}
