// Package mail implements the MailSource port over the Gmail API.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/glowlab/backend/internal/domain/tracking"
)

const (
	gmailUser = "me"
	// listPageSize is the provider-side page size; pages are fetched until
	// the caller's limit is reached.
	listPageSize = 100
	// tokenEarlyExpiry refreshes the cached access token this long before it
	// actually expires.
	tokenEarlyExpiry = 60 * time.Second
)

// GmailSource implements tracking.MailSource over the Gmail API. The access
// token is cached and refreshed through a serialized token source, so
// concurrent requests never race on the token exchange.
type GmailSource struct {
	cfg     *GmailConfig
	svc     *gmail.Service
	account string
}

// NewGmailSource builds the adapter and its OAuth transport. No network call
// happens until the first request.
func NewGmailSource(ctx context.Context, cfg *GmailConfig) (*GmailSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}
	base := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	ts := oauth2.ReuseTokenSourceWithExpiry(nil, base, tokenEarlyExpiry)

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailSource{cfg: cfg, svc: svc}, nil
}

// Verify fetches the mailbox profile, confirming the credentials work, and
// records the mailbox address for Account.
func (s *GmailSource) Verify(ctx context.Context) error {
	profile, err := s.svc.Users.GetProfile(gmailUser).Context(ctx).Do()
	if err != nil {
		return mapGmailError(err)
	}
	s.account = profile.EmailAddress
	return nil
}

// Account returns the verified mailbox address.
func (s *GmailSource) Account() string {
	return s.account
}

// ListRecent returns messages from sender received at or after since, newest
// first, capped at limit.
func (s *GmailSource) ListRecent(ctx context.Context, sender string, since time.Time, limit int) ([]tracking.RawMessage, error) {
	query := fmt.Sprintf("from:%s after:%d", sender, since.Unix())

	msgs := make([]tracking.RawMessage, 0, limit)
	pageToken := ""
	for len(msgs) < limit {
		call := s.svc.Users.Messages.List(gmailUser).Q(query).MaxResults(listPageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		page, err := call.Do()
		if err != nil {
			return nil, mapGmailError(err)
		}

		for _, stub := range page.Messages {
			full, err := s.svc.Users.Messages.Get(gmailUser, stub.Id).Format("full").Context(ctx).Do()
			if err != nil {
				return nil, mapGmailError(err)
			}
			raw, ok := toRawMessage(full)
			if !ok {
				continue
			}
			// The provider query is advisory; re-check the window and sender
			// locally.
			if raw.ReceivedAt.Before(since) || !matchesSender(headerValue(full, "From"), sender) {
				continue
			}
			msgs = append(msgs, raw)
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].ReceivedAt.After(msgs[j].ReceivedAt)
	})
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

// mapGmailError maps provider failures onto the closed error taxonomy.
func mapGmailError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", tracking.ErrBadCredentials, gerr.Message)
		case gerr.Code == http.StatusTooManyRequests, isQuotaError(gerr):
			return tracking.NewRateLimitError(retryAfterHeader(gerr.Header))
		case gerr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %s", tracking.ErrBadCredentials, gerr.Message)
		default:
			return fmt.Errorf("%w: gmail HTTP %d", tracking.ErrTransportFailed, gerr.Code)
		}
	}
	return fmt.Errorf("%w: %v", tracking.ErrTransportFailed, err)
}

// isQuotaError reports whether a 403 is Gmail's rate limiting rather than a
// permission problem.
func isQuotaError(gerr *googleapi.Error) bool {
	if gerr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded", "quotaExceeded", "dailyLimitExceeded":
			return true
		}
	}
	return false
}

func retryAfterHeader(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	if v := h.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// Ensure GmailSource implements the MailSource port.
var _ tracking.MailSource = (*GmailSource)(nil)
