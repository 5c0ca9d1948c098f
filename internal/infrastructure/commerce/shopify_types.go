package commerce

// Shopify Admin REST resource shapes, limited to the fields this adapter
// reads or writes.

// ShopifyOrder is an order resource.
type ShopifyOrder struct {
	ID                int64                `json:"id"`
	Name              string               `json:"name"`
	CancelledAt       string               `json:"cancelled_at,omitempty"`
	FulfillmentStatus string               `json:"fulfillment_status,omitempty"`
	Fulfillments      []ShopifyFulfillment `json:"fulfillments,omitempty"`
}

// ShopifyFulfillment is a fulfillment resource attached to an order.
type ShopifyFulfillment struct {
	ID              int64  `json:"id"`
	Status          string `json:"status"`
	TrackingNumber  string `json:"tracking_number"`
	TrackingCompany string `json:"tracking_company"`
	CreatedAt       string `json:"created_at"`
}

// shopifyOrdersResponse wraps GET /orders.json.
type shopifyOrdersResponse struct {
	Orders []ShopifyOrder `json:"orders"`
}

// shopifyOrderResponse wraps GET /orders/{id}.json.
type shopifyOrderResponse struct {
	Order *ShopifyOrder `json:"order"`
}

// shopifyFulfillmentRequest wraps POST /orders/{id}/fulfillments.json.
type shopifyFulfillmentRequest struct {
	Fulfillment shopifyFulfillmentPayload `json:"fulfillment"`
}

type shopifyFulfillmentPayload struct {
	TrackingNumber  string `json:"tracking_number"`
	TrackingCompany string `json:"tracking_company"`
	NotifyCustomer  bool   `json:"notify_customer"`
}

// shopifyFulfillmentResponse wraps fulfillment create and cancel responses.
type shopifyFulfillmentResponse struct {
	Fulfillment *ShopifyFulfillment `json:"fulfillment"`
}

// shopifyErrorResponse is the error body Shopify returns on 4xx.
type shopifyErrorResponse struct {
	Errors any `json:"errors"`
}
