package domain

// Outcome classifies what an operation did to the cart.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeRejectedCapped
	OutcomeIgnored
	OutcomeRemoved
	OutcomeCleared
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeRejectedCapped:
		return "rejected_capped"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeRemoved:
		return "removed"
	case OutcomeCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Changed reports whether the outcome altered the cart.
func (o Outcome) Changed() bool {
	return o != OutcomeRejectedCapped && o != OutcomeIgnored
}

type EventKind string

const (
	EventItemAdded          EventKind = "item_added"
	EventQuantityUpdated    EventKind = "quantity_updated"
	EventMaxQuantityReached EventKind = "max_quantity_reached"
	EventItemRemoved        EventKind = "item_removed"
	EventItemNotFound       EventKind = "item_not_found"
	EventCartCleared        EventKind = "cart_cleared"
	EventCouponApplied      EventKind = "coupon_applied"
	EventCouponRemoved      EventKind = "coupon_removed"
)

// Event is returned by every cart operation and pushed to subscribers.
// Cart is a snapshot taken after totals were recomputed.
type Event struct {
	Outcome Outcome
	Kind    EventKind
	Key     LineKey
	Cart    Cart
}
