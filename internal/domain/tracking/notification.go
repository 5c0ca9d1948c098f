package tracking

import "time"

// FieldUnknown is the sentinel value the parser assigns to any field it could
// not extract. It is preserved end to end until an operator supplies a
// correction; it is never silently replaced with a display default.
const FieldUnknown = "unknown"

// RawMessage is one shipping-notification email as fetched from the mailbox.
type RawMessage struct {
	// ID is the opaque stable identifier assigned by the mail provider.
	ID string
	// ReceivedAt is the provider's receive timestamp in UTC.
	ReceivedAt time.Time
	Subject    string
	TextBody   string
}

// ShipmentNotification is the structured record extracted from one message.
type ShipmentNotification struct {
	ID             string    `json:"id"`
	ReceivedAt     time.Time `json:"received_at"`
	OrderNumber    string    `json:"order_number"`
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	// RawExcerpt is a verbatim slice of the source message, shown in the
	// dashboard so an operator can correct an incomplete record.
	RawExcerpt string `json:"raw_excerpt"`
	NeedsInput bool   `json:"needs_input"`
}

// IsComplete reports whether every extracted field is usable without
// operator input.
func (n *ShipmentNotification) IsComplete() bool {
	return !n.NeedsInput
}
