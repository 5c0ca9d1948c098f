package tracking

import "time"

// OutcomeKind classifies the result of a single apply or undo operation.
type OutcomeKind string

const (
	OutcomeCreated       OutcomeKind = "created"
	OutcomeAlreadyDone   OutcomeKind = "already_done"
	OutcomeReverted      OutcomeKind = "reverted"
	OutcomeNothingToDo   OutcomeKind = "nothing_to_do"
	OutcomeOrderNotFound OutcomeKind = "order_not_found"
	OutcomeSkipped       OutcomeKind = "skipped"
	OutcomeFailed        OutcomeKind = "failed"
)

// Outcome is the structured result of ApplyTracking or UndoTracking. Normal
// business results (order not found, already fulfilled) are outcomes, not
// errors.
type Outcome struct {
	Kind          OutcomeKind `json:"kind"`
	OrderNumber   string      `json:"order_number"`
	FulfillmentID string      `json:"fulfillment_id,omitempty"`
	// NotifiedAt is set when the platform accepted a tracking create, which
	// triggers exactly one customer email.
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	// ErrorKind is set only for OutcomeFailed items inside a batch.
	ErrorKind string `json:"error_kind,omitempty"`
}

// BatchItem is one entry of an ApplyBatch request.
type BatchItem struct {
	OrderNumber string `json:"order_number"`
	Tracking    string `json:"tracking"`
	Carrier     string `json:"carrier"`
}

// BatchFailure records a per-item failure inside a batch.
type BatchFailure struct {
	OrderNumber string `json:"order_number"`
	ErrorKind   string `json:"error_kind"`
}

// BatchReport summarizes a sequential batch apply. One outcome is reported
// per input item, in input order; the batch never aborts early.
type BatchReport struct {
	Created     int            `json:"created"`
	AlreadyDone int            `json:"already_done"`
	Skipped     int            `json:"skipped"`
	Failed      []BatchFailure `json:"failed"`
	Outcomes    []Outcome      `json:"outcomes"`
}

// ReconciledRow joins a parsed notification with the platform's current view
// of the referenced order.
type ReconciledRow struct {
	Notification ShipmentNotification `json:"notification"`
	State        FulfillmentState     `json:"fulfillment_state"`
	// IsPending is true when the notification is complete and the order is
	// unfulfilled, i.e. the row is actionable without operator input.
	IsPending bool `json:"is_pending"`
	// CustomerNotifiedAt is the time the platform accepted the tracking
	// create, if the order is fulfilled.
	CustomerNotifiedAt *time.Time `json:"customer_notified_at,omitempty"`
}

// ListResult is the merged mailbox/platform view returned by ListPending.
type ListResult struct {
	Pending []ReconciledRow `json:"pending"`
	All     []ReconciledRow `json:"all"`
	// MailboxLabel identifies the mailbox the notifications came from, shown
	// in the dashboard header.
	MailboxLabel string `json:"mailbox_label"`
}
