package domain

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

type statusInfo struct {
	displayName string
	next        []Status
}

// statusTable fixes the display names and the allowed transitions.
// CANCELLED and DELIVERED are terminal.
var statusTable = map[Status]statusInfo{
	StatusPending:   {"Pending", []Status{StatusConfirmed, StatusCancelled}},
	StatusConfirmed: {"Confirmed", []Status{StatusShipped, StatusCancelled}},
	StatusShipped:   {"Shipped", []Status{StatusDelivered}},
	StatusDelivered: {"Delivered", nil},
	StatusCancelled: {"Cancelled", nil},
}

func (s Status) DisplayName() string {
	return statusTable[s].displayName
}

// CanTransition reports whether moving from s to target is allowed.
func (s Status) CanTransition(target Status) bool {
	for _, next := range statusTable[s].next {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(statusTable[s].next) == 0
}
