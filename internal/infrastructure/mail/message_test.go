package mail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"
)

func encodeBody(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestToRawMessage(t *testing.T) {
	t.Run("single part message", func(t *testing.T) {
		msg := &gmail.Message{
			Id:           "msg-1",
			InternalDate: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC).UnixMilli(),
			Payload: &gmail.MessagePart{
				MimeType: "text/plain",
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Your order #1042 has shipped"},
					{Name: "From", Value: "Korealy <order@korealy>"},
				},
				Body: &gmail.MessagePartBody{Data: encodeBody("tracking: AU123456789")},
			},
		}

		raw, ok := toRawMessage(msg)

		require.True(t, ok)
		assert.Equal(t, "msg-1", raw.ID)
		assert.Equal(t, time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), raw.ReceivedAt)
		assert.Equal(t, "Your order #1042 has shipped", raw.Subject)
		assert.Equal(t, "tracking: AU123456789", raw.TextBody)
	})

	t.Run("multipart picks text plain", func(t *testing.T) {
		msg := &gmail.Message{
			Id: "msg-2",
			Payload: &gmail.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encodeBody("<p>html</p>")}},
					{MimeType: "text/plain; charset=UTF-8", Body: &gmail.MessagePartBody{Data: encodeBody("plain body")}},
				},
			},
		}

		raw, ok := toRawMessage(msg)

		require.True(t, ok)
		assert.Equal(t, "plain body", raw.TextBody)
	})

	t.Run("nested multipart", func(t *testing.T) {
		msg := &gmail.Message{
			Id: "msg-3",
			Payload: &gmail.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmail.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmail.MessagePart{
							{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encodeBody("nested plain")}},
						},
					},
				},
			},
		}

		raw, ok := toRawMessage(msg)

		require.True(t, ok)
		assert.Equal(t, "nested plain", raw.TextBody)
	})

	t.Run("no payload is dropped", func(t *testing.T) {
		_, ok := toRawMessage(&gmail.Message{Id: "msg-4"})
		assert.False(t, ok)
	})
}

func TestDecodeBody(t *testing.T) {
	t.Run("unpadded web-safe base64", func(t *testing.T) {
		assert.Equal(t, "hello", decodeBody(base64.RawURLEncoding.EncodeToString([]byte("hello"))))
	})

	t.Run("padded web-safe base64", func(t *testing.T) {
		assert.Equal(t, "hello", decodeBody(base64.URLEncoding.EncodeToString([]byte("hello"))))
	})

	t.Run("garbage yields empty", func(t *testing.T) {
		assert.Equal(t, "", decodeBody("!!not base64!!"))
	})
}

func TestMatchesSender(t *testing.T) {
	tests := []struct {
		name   string
		from   string
		sender string
		want   bool
	}{
		{
			name:   "bare address",
			from:   "order@korealy",
			sender: "order@korealy",
			want:   true,
		},
		{
			name:   "display name form",
			from:   "Korealy Fulfillment <order@korealy>",
			sender: "order@korealy",
			want:   true,
		},
		{
			name:   "domain is case-insensitive",
			from:   "order@KOREALY",
			sender: "order@korealy",
			want:   true,
		},
		{
			name:   "local part is exact",
			from:   "Order@korealy",
			sender: "order@korealy",
			want:   false,
		},
		{
			name:   "different sender",
			from:   "noreply@korealy",
			sender: "order@korealy",
			want:   false,
		},
		{
			name:   "lookalike domain",
			from:   "order@korealy.example",
			sender: "order@korealy",
			want:   false,
		},
		{
			name:   "not an address",
			from:   "not-an-address",
			sender: "order@korealy",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesSender(tt.from, tt.sender))
		})
	}
}
