package mail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"

	"github.com/glowlab/backend/internal/domain/tracking"
)

// toRawMessage converts a fully-hydrated Gmail message to the domain record.
// Messages without a payload are dropped.
func toRawMessage(msg *gmail.Message) (tracking.RawMessage, bool) {
	if msg == nil || msg.Payload == nil {
		return tracking.RawMessage{}, false
	}
	return tracking.RawMessage{
		ID:         msg.Id,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
		Subject:    headerValue(msg, "Subject"),
		TextBody:   extractTextBody(msg.Payload),
	}, true
}

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractTextBody walks the MIME tree and returns the first text/plain part.
// Single-part messages keep the body on the root part.
func extractTextBody(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}
	if strings.HasPrefix(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	for _, child := range part.Parts {
		if body := extractTextBody(child); body != "" {
			return body
		}
	}
	// Fall back to the root body for messages with no text/plain part.
	if part.Body != nil && part.Body.Data != "" {
		return decodeBody(part.Body.Data)
	}
	return ""
}

// decodeBody decodes Gmail's web-safe base64, which may arrive padded or not.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

// matchesSender compares the From header against the expected sender: the
// domain case-insensitively, the local part exactly.
func matchesSender(fromHeader, sender string) bool {
	from := fromHeader
	if addr, err := mail.ParseAddress(fromHeader); err == nil {
		from = addr.Address
	}

	fromLocal, fromDomain, ok := splitAddress(from)
	if !ok {
		return false
	}
	wantLocal, wantDomain, ok := splitAddress(sender)
	if !ok {
		return false
	}
	return fromLocal == wantLocal && strings.EqualFold(fromDomain, wantDomain)
}

func splitAddress(addr string) (local, domain string, ok bool) {
	i := strings.LastIndex(addr, "@")
	if i <= 0 || i == len(addr)-1 {
		return "", "", false
	}
	return addr[:i], addr[i+1:], true
}
