package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowlab/backend/internal/domain/tracking"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*ShopifyAdapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewShopifyAdapter(&ShopifyConfig{
		Store:       "glowlab",
		AccessToken: "shpat_test",
		BaseURL:     server.URL,
	})
	require.NoError(t, err)
	return adapter, server
}

func TestShopifyConfig_Validate(t *testing.T) {
	t.Run("derives base URL from store handle", func(t *testing.T) {
		cfg := &ShopifyConfig{Store: "glowlab", AccessToken: "tok"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://glowlab.myshopify.com", cfg.BaseURL)
		assert.Equal(t, ShopifyDefaultAPIVersion, cfg.APIVersion)
	})

	t.Run("accepts full hostname", func(t *testing.T) {
		cfg := &ShopifyConfig{Store: "glowlab.myshopify.com", AccessToken: "tok"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "https://glowlab.myshopify.com", cfg.BaseURL)
	})

	t.Run("missing store", func(t *testing.T) {
		cfg := &ShopifyConfig{AccessToken: "tok"}
		assert.ErrorIs(t, cfg.Validate(), ErrShopifyConfigMissingStore)
	})

	t.Run("missing token", func(t *testing.T) {
		cfg := &ShopifyConfig{Store: "glowlab"}
		assert.ErrorIs(t, cfg.Validate(), ErrShopifyConfigMissingToken)
	})
}

func TestShopifyAdapter_Verify(t *testing.T) {
	t.Run("sends access token header", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
			w.Write([]byte(`{"shop":{"id":1}}`))
		})
		assert.NoError(t, adapter.Verify(context.Background()))
	})

	t.Run("rejected token", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		assert.ErrorIs(t, adapter.Verify(context.Background()), tracking.ErrBadCredentials)
	})
}

func TestShopifyAdapter_FindOrder(t *testing.T) {
	t.Run("exact name match among fuzzy results", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "#1042", r.URL.Query().Get("name"))
			assert.Equal(t, "any", r.URL.Query().Get("status"))
			json.NewEncoder(w).Encode(shopifyOrdersResponse{Orders: []ShopifyOrder{
				{ID: 9010, Name: "#10420"},
				{ID: 9001, Name: "#1042"},
			}})
		})

		ref, err := adapter.FindOrder(context.Background(), "1042")

		require.NoError(t, err)
		assert.Equal(t, int64(9001), ref.ID)
		assert.Equal(t, "1042", ref.Number)
	})

	t.Run("no exact match", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopifyOrdersResponse{Orders: []ShopifyOrder{
				{ID: 9010, Name: "#10420"},
			}})
		})

		_, err := adapter.FindOrder(context.Background(), "1042")
		assert.ErrorIs(t, err, tracking.ErrOrderNotFound)
	})

	t.Run("empty result", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"orders":[]}`))
		})

		_, err := adapter.FindOrder(context.Background(), "9999")
		assert.ErrorIs(t, err, tracking.ErrOrderNotFound)
	})
}

func TestShopifyAdapter_GetState(t *testing.T) {
	ref := tracking.OrderRef{ID: 9001, Number: "1042"}

	t.Run("unfulfilled", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopifyOrderResponse{Order: &ShopifyOrder{ID: 9001, Name: "#1042"}})
		})

		state, err := adapter.GetState(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, tracking.StatusUnfulfilled, state.Status)
		assert.Equal(t, "1042", state.OrderNumber)
	})

	t.Run("fulfilled with notification time", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopifyOrderResponse{Order: &ShopifyOrder{
				ID:   9001,
				Name: "#1042",
				Fulfillments: []ShopifyFulfillment{{
					ID:              555,
					Status:          "success",
					TrackingNumber:  "AU123456789",
					TrackingCompany: "DHL",
					CreatedAt:       "2026-03-14T10:00:00+10:00",
				}},
			}})
		})

		state, err := adapter.GetState(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, tracking.StatusFulfilled, state.Status)
		assert.Equal(t, "AU123456789", state.Tracking)
		assert.Equal(t, "DHL", state.Carrier)
		assert.Equal(t, "555", state.FulfillmentID)
		require.NotNil(t, state.NotifiedAt)
		assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), state.NotifiedAt.UTC())
	})

	t.Run("cancelled fulfillments do not count", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopifyOrderResponse{Order: &ShopifyOrder{
				ID:           9001,
				Name:         "#1042",
				Fulfillments: []ShopifyFulfillment{{ID: 555, Status: "cancelled"}},
			}})
		})

		state, err := adapter.GetState(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, tracking.StatusUnfulfilled, state.Status)
	})

	t.Run("cancelled order", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(shopifyOrderResponse{Order: &ShopifyOrder{
				ID:          9001,
				Name:        "#1042",
				CancelledAt: "2026-03-13T00:00:00Z",
			}})
		})

		state, err := adapter.GetState(context.Background(), ref)

		require.NoError(t, err)
		assert.Equal(t, tracking.StatusCancelled, state.Status)
	})

	t.Run("order gone", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := adapter.GetState(context.Background(), ref)
		assert.ErrorIs(t, err, tracking.ErrOrderNotFound)
	})
}

func TestShopifyAdapter_CreateFulfillment(t *testing.T) {
	ref := tracking.OrderRef{ID: 9001, Number: "1042"}

	t.Run("created", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var req shopifyFulfillmentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "AU123456789", req.Fulfillment.TrackingNumber)
			assert.Equal(t, "DHL", req.Fulfillment.TrackingCompany)
			assert.True(t, req.Fulfillment.NotifyCustomer)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(shopifyFulfillmentResponse{Fulfillment: &ShopifyFulfillment{ID: 555}})
		})

		id, err := adapter.CreateFulfillment(context.Background(), ref, "AU123456789", "DHL", true)

		require.NoError(t, err)
		assert.Equal(t, "555", id)
	})

	t.Run("platform race surfaces already fulfilled", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors":{"base":["Order has already been fulfilled"]}}`))
		})

		_, err := adapter.CreateFulfillment(context.Background(), ref, "AU123456789", "DHL", true)
		assert.ErrorIs(t, err, tracking.ErrAlreadyFulfilled)
	})

	t.Run("other rejection is a validation failure", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"errors":{"tracking_number":["is invalid"]}}`))
		})

		_, err := adapter.CreateFulfillment(context.Background(), ref, "???", "DHL", true)
		assert.ErrorIs(t, err, tracking.ErrValidationFailed)
	})

	t.Run("order gone", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := adapter.CreateFulfillment(context.Background(), ref, "AU123456789", "DHL", true)
		assert.ErrorIs(t, err, tracking.ErrOrderNotFound)
	})
}

func TestShopifyAdapter_DeleteFulfillment(t *testing.T) {
	ref := tracking.OrderRef{ID: 9001, Number: "1042"}

	t.Run("cancelled", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/orders/9001/fulfillments/555/cancel.json")
			json.NewEncoder(w).Encode(shopifyFulfillmentResponse{Fulfillment: &ShopifyFulfillment{ID: 555, Status: "cancelled"}})
		})

		assert.NoError(t, adapter.DeleteFulfillment(context.Background(), ref, "555"))
	})

	t.Run("nothing to cancel", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := adapter.DeleteFulfillment(context.Background(), ref, "555")
		assert.ErrorIs(t, err, tracking.ErrNothingToDo)
	})
}

func TestShopifyAdapter_ErrorMapping(t *testing.T) {
	ref := tracking.OrderRef{ID: 9001, Number: "1042"}

	t.Run("rate limited with retry hint", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "2.0")
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := adapter.GetState(context.Background(), ref)

		assert.ErrorIs(t, err, tracking.ErrRateLimited)
		hint, ok := tracking.RetryAfterHint(err)
		assert.True(t, ok)
		assert.Equal(t, 2*time.Second, hint)
	})

	t.Run("server error", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := adapter.GetState(context.Background(), ref)
		assert.ErrorIs(t, err, tracking.ErrPlatformUnavailable)
	})

	t.Run("network failure", func(t *testing.T) {
		adapter, server := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {})
		server.Close()

		_, err := adapter.GetState(context.Background(), ref)
		assert.ErrorIs(t, err, tracking.ErrPlatformUnavailable)
	})
}
