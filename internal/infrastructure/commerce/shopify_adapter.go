// Package commerce implements the FulfillmentClient port over the Shopify
// Admin REST API.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/glowlab/backend/internal/domain/tracking"
)

// maxResponseSize is the maximum allowed response size from the Shopify API
// (10MB).
const maxResponseSize = 10 * 1024 * 1024

// ShopifyAdapter implements the tracking.FulfillmentClient port for Shopify.
type ShopifyAdapter struct {
	config     *ShopifyConfig
	httpClient *http.Client
}

// NewShopifyAdapter creates a new Shopify adapter with the given
// configuration.
func NewShopifyAdapter(config *ShopifyConfig) (*ShopifyAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopifyAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Verify confirms the credentials by fetching the shop resource.
func (a *ShopifyAdapter) Verify(ctx context.Context) error {
	resp, err := a.doRequest(ctx, http.MethodGet, "shop.json", nil)
	if err != nil {
		return err
	}
	if resp.status != http.StatusOK {
		return fmt.Errorf("%w: shop lookup returned HTTP %d", tracking.ErrPlatformUnavailable, resp.status)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// FindOrder resolves a human-facing order number to the platform order.
// Shopify's name filter is fuzzy, so the result set is matched exactly.
func (a *ShopifyAdapter) FindOrder(ctx context.Context, orderNumber string) (*tracking.OrderRef, error) {
	name := "#" + orderNumber
	path := fmt.Sprintf("orders.json?status=any&fields=id,name&name=%s", url.QueryEscape(name))

	resp, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, a.unexpectedStatus(resp)
	}

	var body shopifyOrdersResponse
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return nil, fmt.Errorf("%w: failed to parse orders response: %v", tracking.ErrPlatformUnavailable, err)
	}

	for _, order := range body.Orders {
		if order.Name == name {
			return &tracking.OrderRef{ID: order.ID, Number: orderNumber}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", tracking.ErrOrderNotFound, name)
}

// GetState returns the order's current fulfillment state.
func (a *ShopifyAdapter) GetState(ctx context.Context, ref tracking.OrderRef) (tracking.FulfillmentState, error) {
	path := fmt.Sprintf("orders/%d.json?fields=id,name,cancelled_at,fulfillment_status,fulfillments", ref.ID)

	resp, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return tracking.FulfillmentState{}, err
	}
	if resp.status == http.StatusNotFound {
		return tracking.FulfillmentState{}, fmt.Errorf("%w: order id %d", tracking.ErrOrderNotFound, ref.ID)
	}
	if resp.status != http.StatusOK {
		return tracking.FulfillmentState{}, a.unexpectedStatus(resp)
	}

	var body shopifyOrderResponse
	if err := json.Unmarshal(resp.body, &body); err != nil || body.Order == nil {
		return tracking.FulfillmentState{}, fmt.Errorf("%w: failed to parse order response", tracking.ErrPlatformUnavailable)
	}

	return stateFromOrder(ref.Number, body.Order), nil
}

// CreateFulfillment attaches tracking to an order. The platform rejects a
// second fulfillment, which the adapter surfaces as ErrAlreadyFulfilled.
// The carrier string is passed through verbatim; the platform normalizes.
func (a *ShopifyAdapter) CreateFulfillment(ctx context.Context, ref tracking.OrderRef, trackingNumber, carrier string, notify bool) (string, error) {
	payload := shopifyFulfillmentRequest{
		Fulfillment: shopifyFulfillmentPayload{
			TrackingNumber:  trackingNumber,
			TrackingCompany: carrier,
			NotifyCustomer:  notify,
		},
	}
	path := fmt.Sprintf("orders/%d/fulfillments.json", ref.ID)

	resp, err := a.doRequest(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}
	switch resp.status {
	case http.StatusCreated, http.StatusOK:
	case http.StatusNotFound:
		return "", fmt.Errorf("%w: order id %d", tracking.ErrOrderNotFound, ref.ID)
	case http.StatusUnprocessableEntity:
		if strings.Contains(strings.ToLower(string(resp.body)), "fulfill") {
			return "", fmt.Errorf("%w: order %s", tracking.ErrAlreadyFulfilled, ref.Number)
		}
		return "", fmt.Errorf("%w: %s", tracking.ErrValidationFailed, errorDetail(resp.body))
	default:
		return "", a.unexpectedStatus(resp)
	}

	var body shopifyFulfillmentResponse
	if err := json.Unmarshal(resp.body, &body); err != nil || body.Fulfillment == nil {
		return "", fmt.Errorf("%w: failed to parse fulfillment response", tracking.ErrPlatformUnavailable)
	}
	return strconv.FormatInt(body.Fulfillment.ID, 10), nil
}

// DeleteFulfillment cancels an existing fulfillment.
func (a *ShopifyAdapter) DeleteFulfillment(ctx context.Context, ref tracking.OrderRef, fulfillmentID string) error {
	path := fmt.Sprintf("orders/%d/fulfillments/%s/cancel.json", ref.ID, url.PathEscape(fulfillmentID))

	resp, err := a.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	switch resp.status {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: fulfillment %s", tracking.ErrNothingToDo, fulfillmentID)
	default:
		return a.unexpectedStatus(resp)
	}
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

type shopifyResponse struct {
	status int
	body   []byte
	header http.Header
}

// doRequest performs an HTTP request against the Admin API. Transport
// failures, credential rejections, rate limits and 5xx responses are mapped
// onto the closed error taxonomy here; business statuses (404, 422) are left
// to the caller.
func (a *ShopifyAdapter) doRequest(ctx context.Context, method, path string, payload any) (*shopifyResponse, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.apiURL(path), reqBody)
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", a.config.AccessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tracking.ErrPlatformUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", tracking.ErrPlatformUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: shopify HTTP %d", tracking.ErrBadCredentials, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, tracking.NewRateLimitError(retryAfter(resp.Header))
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: shopify HTTP %d", tracking.ErrPlatformUnavailable, resp.StatusCode)
	}

	return &shopifyResponse{status: resp.StatusCode, body: body, header: resp.Header}, nil
}

func (a *ShopifyAdapter) unexpectedStatus(resp *shopifyResponse) error {
	return fmt.Errorf("%w: shopify HTTP %d: %s", tracking.ErrPlatformUnavailable, resp.status, errorDetail(resp.body))
}

// stateFromOrder derives the observed fulfillment state from an order
// resource. Cancelled fulfillments do not count as active.
func stateFromOrder(orderNumber string, order *ShopifyOrder) tracking.FulfillmentState {
	state := tracking.FulfillmentState{
		OrderNumber: orderNumber,
		Status:      tracking.StatusUnfulfilled,
	}
	if order.CancelledAt != "" {
		state.Status = tracking.StatusCancelled
		return state
	}
	for _, f := range order.Fulfillments {
		if f.Status == "cancelled" {
			continue
		}
		state.Status = tracking.StatusFulfilled
		state.Tracking = f.TrackingNumber
		state.Carrier = f.TrackingCompany
		state.FulfillmentID = strconv.FormatInt(f.ID, 10)
		if t, err := time.Parse(time.RFC3339, f.CreatedAt); err == nil {
			utc := t.UTC()
			state.NotifiedAt = &utc
		}
		return state
	}
	return state
}

func retryAfter(h http.Header) time.Duration {
	if v := h.Get("Retry-After"); v != "" {
		if seconds, err := strconv.ParseFloat(v, 64); err == nil && seconds > 0 {
			return time.Duration(seconds * float64(time.Second))
		}
	}
	return 0
}

func errorDetail(body []byte) string {
	var parsed shopifyErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Errors != nil {
		return fmt.Sprintf("%v", parsed.Errors)
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > 200 {
		trimmed = trimmed[:200]
	}
	return trimmed
}

// Ensure ShopifyAdapter implements the FulfillmentClient port.
var _ tracking.FulfillmentClient = (*ShopifyAdapter)(nil)
