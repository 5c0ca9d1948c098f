package tracking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/glowlab/backend/internal/domain/tracking"
	"github.com/glowlab/backend/internal/infrastructure/telemetry"
)

const defaultCallTimeout = 30 * time.Second

// SyncConfig holds the reconciliation window and limits, derived from
// configuration at construction.
type SyncConfig struct {
	// PartnerSender is the fulfillment partner's sender address.
	PartnerSender string
	// Lookback is how far back mail is listed.
	Lookback time.Duration
	// BatchLimit caps the number of messages per listing.
	BatchLimit int
	// CallTimeout is the per-adapter-call deadline.
	CallTimeout time.Duration
}

// SyncService reconciles partner shipping notifications against the commerce
// platform's fulfillment state. It holds no credentials and no durable state;
// the platform is the source of truth, so an interrupted call is repaired by
// the next listing.
type SyncService struct {
	mail     tracking.MailSource
	commerce tracking.FulfillmentClient
	cfg      SyncConfig
	logger   *zap.Logger
	metrics  *telemetry.SyncMetrics

	now func() time.Time
}

// NewSyncService creates a reconciler over the given adapters. metrics may be
// nil.
func NewSyncService(mail tracking.MailSource, commerce tracking.FulfillmentClient, cfg SyncConfig, logger *zap.Logger, metrics *telemetry.SyncMetrics) *SyncService {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		mail:     mail,
		commerce: commerce,
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// ListPending fetches recent partner mail, parses each message, joins every
// referenced order against the platform and partitions the result. Duplicate
// message ids are collapsed to one row. Rows are ordered by received time,
// newest first.
func (s *SyncService) ListPending(ctx context.Context, now time.Time) (*tracking.ListResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking_sync", "list_pending")
	defer span.End()

	since := now.Add(-s.cfg.Lookback)
	msgs, err := s.listRecent(ctx, since)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	seen := make(map[string]struct{}, len(msgs))
	all := make([]tracking.ReconciledRow, 0, len(msgs))
	for _, msg := range msgs {
		if _, dup := seen[msg.ID]; dup {
			continue
		}
		seen[msg.ID] = struct{}{}

		notification := ParseNotification(msg)
		state := tracking.FulfillmentState{
			OrderNumber: notification.OrderNumber,
			Status:      tracking.StatusNoSuchOrder,
		}
		if notification.OrderNumber != tracking.FieldUnknown {
			state, err = s.lookupState(ctx, notification.OrderNumber)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
		}

		all = append(all, tracking.ReconciledRow{
			Notification:       notification,
			State:              state,
			IsPending:          notification.IsComplete() && state.Status == tracking.StatusUnfulfilled,
			CustomerNotifiedAt: state.NotifiedAt,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Notification.ReceivedAt.After(all[j].Notification.ReceivedAt)
	})

	pending := make([]tracking.ReconciledRow, 0, len(all))
	for _, row := range all {
		if row.IsPending {
			pending = append(pending, row)
		}
	}

	s.logger.Info("listed pending notifications",
		zap.Int("messages", len(msgs)),
		zap.Int("rows", len(all)),
		zap.Int("pending", len(pending)),
	)

	return &tracking.ListResult{
		Pending:      pending,
		All:          all,
		MailboxLabel: s.mail.Account(),
	}, nil
}

// ApplyTracking attaches tracking to an order and asks the platform to notify
// the customer. Re-applying to an already fulfilled order is an idempotent
// success: the platform keeps exactly one fulfillment and one customer email.
func (s *SyncService) ApplyTracking(ctx context.Context, orderNumber, trackingNumber, carrier string) (tracking.Outcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking_sync", "apply_tracking")
	defer span.End()

	if err := validateApplyInput(orderNumber, trackingNumber, carrier); err != nil {
		return tracking.Outcome{}, err
	}

	ref, state, err := s.resolve(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, tracking.ErrOrderNotFound) {
			return s.outcome(ctx, tracking.Outcome{Kind: tracking.OutcomeOrderNotFound, OrderNumber: orderNumber}), nil
		}
		telemetry.RecordError(span, err)
		return tracking.Outcome{}, err
	}

	if state.Status == tracking.StatusFulfilled {
		return s.outcome(ctx, tracking.Outcome{
			Kind:          tracking.OutcomeAlreadyDone,
			OrderNumber:   orderNumber,
			FulfillmentID: state.FulfillmentID,
			NotifiedAt:    state.NotifiedAt,
		}), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	fulfillmentID, err := s.commerce.CreateFulfillment(callCtx, *ref, trackingNumber, carrier, true)
	if err != nil {
		telemetry.RecordError(span, err)
		return tracking.Outcome{}, err
	}

	notified := s.now().UTC()
	s.logger.Info("fulfillment created",
		zap.String("order_number", orderNumber),
		zap.String("fulfillment_id", fulfillmentID),
		zap.String("carrier", carrier),
	)
	return s.outcome(ctx, tracking.Outcome{
		Kind:          tracking.OutcomeCreated,
		OrderNumber:   orderNumber,
		FulfillmentID: fulfillmentID,
		NotifiedAt:    &notified,
	}), nil
}

// UndoTracking removes the order's active fulfillment, returning it to the
// unfulfilled state. Undoing an unfulfilled order reports nothing_to_do.
func (s *SyncService) UndoTracking(ctx context.Context, orderNumber string) (tracking.Outcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking_sync", "undo_tracking")
	defer span.End()

	if isBlank(orderNumber) {
		return tracking.Outcome{}, fmt.Errorf("%w: order number is required", tracking.ErrValidationFailed)
	}

	ref, state, err := s.resolve(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, tracking.ErrOrderNotFound) {
			return s.outcome(ctx, tracking.Outcome{Kind: tracking.OutcomeOrderNotFound, OrderNumber: orderNumber}), nil
		}
		telemetry.RecordError(span, err)
		return tracking.Outcome{}, err
	}

	if state.Status != tracking.StatusFulfilled {
		return s.outcome(ctx, tracking.Outcome{Kind: tracking.OutcomeNothingToDo, OrderNumber: orderNumber}), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	if err := s.commerce.DeleteFulfillment(callCtx, *ref, state.FulfillmentID); err != nil {
		telemetry.RecordError(span, err)
		return tracking.Outcome{}, err
	}

	s.logger.Info("fulfillment reverted",
		zap.String("order_number", orderNumber),
		zap.String("fulfillment_id", state.FulfillmentID),
	)
	return s.outcome(ctx, tracking.Outcome{
		Kind:          tracking.OutcomeReverted,
		OrderNumber:   orderNumber,
		FulfillmentID: state.FulfillmentID,
	}), nil
}

// ApplyBatch applies items sequentially, respecting per-order ordering and
// the platform's per-store rate budget. The batch never aborts early; every
// item yields exactly one outcome, in input order.
func (s *SyncService) ApplyBatch(ctx context.Context, items []tracking.BatchItem) (tracking.BatchReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tracking_sync", "apply_batch")
	defer span.End()

	report := tracking.BatchReport{
		Failed:   make([]tracking.BatchFailure, 0),
		Outcomes: make([]tracking.Outcome, 0, len(items)),
	}
	for _, item := range items {
		if isSentinel(item.Tracking) || isSentinel(item.Carrier) {
			report.Skipped++
			report.Outcomes = append(report.Outcomes, s.outcome(ctx, tracking.Outcome{
				Kind:        tracking.OutcomeSkipped,
				OrderNumber: item.OrderNumber,
			}))
			continue
		}

		out, err := s.ApplyTracking(ctx, item.OrderNumber, item.Tracking, item.Carrier)
		switch {
		case err != nil:
			kind := tracking.ErrorKind(err)
			report.Failed = append(report.Failed, tracking.BatchFailure{OrderNumber: item.OrderNumber, ErrorKind: kind})
			report.Outcomes = append(report.Outcomes, s.outcome(ctx, tracking.Outcome{
				Kind:        tracking.OutcomeFailed,
				OrderNumber: item.OrderNumber,
				ErrorKind:   kind,
			}))
			s.logger.Warn("batch item failed",
				zap.String("order_number", item.OrderNumber),
				zap.String("error_kind", kind),
				zap.Error(err),
			)
		case out.Kind == tracking.OutcomeCreated:
			report.Created++
			report.Outcomes = append(report.Outcomes, out)
		case out.Kind == tracking.OutcomeAlreadyDone:
			report.AlreadyDone++
			report.Outcomes = append(report.Outcomes, out)
		case out.Kind == tracking.OutcomeOrderNotFound:
			report.Failed = append(report.Failed, tracking.BatchFailure{OrderNumber: item.OrderNumber, ErrorKind: "order_not_found"})
			report.Outcomes = append(report.Outcomes, out)
		default:
			report.Outcomes = append(report.Outcomes, out)
		}
	}
	return report, nil
}

// listRecent fetches partner mail under the per-call deadline.
func (s *SyncService) listRecent(ctx context.Context, since time.Time) ([]tracking.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.mail.ListRecent(callCtx, s.cfg.PartnerSender, since, s.cfg.BatchLimit)
}

// resolve maps an order number to its platform ref and current state.
func (s *SyncService) resolve(ctx context.Context, orderNumber string) (*tracking.OrderRef, tracking.FulfillmentState, error) {
	findCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	ref, err := s.commerce.FindOrder(findCtx, orderNumber)
	if err != nil {
		return nil, tracking.FulfillmentState{}, err
	}

	stateCtx, cancel2 := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel2()
	state, err := s.commerce.GetState(stateCtx, *ref)
	if err != nil {
		return nil, tracking.FulfillmentState{}, err
	}
	return ref, state, nil
}

// lookupState is resolve for the listing path, where an unknown order is a
// row state rather than an outcome.
func (s *SyncService) lookupState(ctx context.Context, orderNumber string) (tracking.FulfillmentState, error) {
	_, state, err := s.resolve(ctx, orderNumber)
	if errors.Is(err, tracking.ErrOrderNotFound) {
		return tracking.FulfillmentState{OrderNumber: orderNumber, Status: tracking.StatusNoSuchOrder}, nil
	}
	if err != nil {
		return tracking.FulfillmentState{}, err
	}
	return state, nil
}

// outcome records the outcome metric and returns the outcome unchanged.
func (s *SyncService) outcome(ctx context.Context, out tracking.Outcome) tracking.Outcome {
	if s.metrics != nil {
		s.metrics.RecordOutcome(ctx, string(out.Kind))
	}
	return out
}

func validateApplyInput(orderNumber, trackingNumber, carrier string) error {
	switch {
	case isSentinel(orderNumber):
		return fmt.Errorf("%w: order number is required", tracking.ErrValidationFailed)
	case isSentinel(trackingNumber):
		return fmt.Errorf("%w: tracking number is required", tracking.ErrValidationFailed)
	case isSentinel(carrier):
		return fmt.Errorf("%w: carrier is required", tracking.ErrValidationFailed)
	}
	return nil
}

func isBlank(v string) bool {
	return v == ""
}

func isSentinel(v string) bool {
	return v == "" || v == tracking.FieldUnknown
}
