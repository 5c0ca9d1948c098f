package tracking

import "time"

// FulfillmentStatus is the order fulfillment state as observed on the
// commerce platform. The platform owns the lifecycle; this service only
// transitions orders between unfulfilled and fulfilled.
type FulfillmentStatus string

const (
	// StatusNoSuchOrder means the order number does not resolve to an order.
	StatusNoSuchOrder FulfillmentStatus = "no_such_order"
	// StatusUnfulfilled means the order exists and has no active fulfillment.
	StatusUnfulfilled FulfillmentStatus = "unfulfilled"
	// StatusFulfilled means the order has an active fulfillment with tracking.
	StatusFulfilled FulfillmentStatus = "fulfilled"
	// StatusCancelled means the order was cancelled on the platform.
	StatusCancelled FulfillmentStatus = "cancelled"
)

// OrderRef resolves a human-facing order number to the platform-internal
// order identity.
type OrderRef struct {
	// ID is the platform-internal order id.
	ID int64
	// Number is the human-facing order number without the "#" prefix.
	Number string
}

// FulfillmentState is the observed fulfillment state of one order.
type FulfillmentState struct {
	OrderNumber string            `json:"order_number"`
	Status      FulfillmentStatus `json:"status"`
	// Tracking, Carrier and FulfillmentID are set only when Status is
	// StatusFulfilled.
	Tracking      string `json:"tracking,omitempty"`
	Carrier       string `json:"carrier,omitempty"`
	FulfillmentID string `json:"fulfillment_id,omitempty"`
	// NotifiedAt is the time the platform accepted the tracking create, which
	// is when the customer email was triggered.
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}
