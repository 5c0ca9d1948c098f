package tracking

import (
	"context"
	"time"
)

// MailSource reads shipping-notification mail from the partner mailbox. The
// adapter owns the mail credentials and the access-token cache; callers never
// see either.
type MailSource interface {
	// ListRecent returns messages whose From header matches sender and which
	// arrived at or after since, newest first, capped at limit. When the cap
	// is saturated, older messages are silently dropped.
	ListRecent(ctx context.Context, sender string, since time.Time, limit int) ([]RawMessage, error)

	// Account returns the mailbox address, used as the dashboard label.
	Account() string
}

// FulfillmentClient is the typed port over the commerce platform's
// order/fulfillment API. The adapter owns the platform credentials.
type FulfillmentClient interface {
	// FindOrder resolves a human-facing order number to the platform-internal
	// order. It fails with ErrOrderNotFound when no order matches.
	FindOrder(ctx context.Context, orderNumber string) (*OrderRef, error)

	// GetState returns the order's current fulfillment state.
	GetState(ctx context.Context, ref OrderRef) (FulfillmentState, error)

	// CreateFulfillment attaches tracking to an unfulfilled order and returns
	// the new fulfillment id. The platform sends the customer email when
	// notify is true and rejects with ErrAlreadyFulfilled if a fulfillment
	// already exists, which is what keeps the notification count at one.
	CreateFulfillment(ctx context.Context, ref OrderRef, trackingNumber, carrier string, notify bool) (string, error)

	// DeleteFulfillment cancels an existing fulfillment, returning the order
	// to the unfulfilled state.
	DeleteFulfillment(ctx context.Context, ref OrderRef, fulfillmentID string) error
}
