package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome delivery errors
var (
	ErrUnknownOutcome          = errors.New("unknown payment outcome")
	ErrOutcomeAlreadyDelivered = errors.New("outcome already delivered for this attempt")
)

// attemptStatusForOutcome maps popup outcomes to attempt statuses
var attemptStatusForOutcome = map[string]string{
	models.OutcomeSuccess: models.AttemptStatusPaid,
	models.OutcomePending: models.AttemptStatusPending,
	models.OutcomeError:   models.AttemptStatusFailed,
	models.OutcomeClosed:  models.AttemptStatusClosed,
}

// OutcomeDispatcher delivers the hosted popup's terminal result for a
// checkout attempt. Exactly one of success, pending, error or closed may fire
// per attempt; later deliveries are rejected.
type OutcomeDispatcher struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger

	mu        sync.Mutex
	delivered map[string]string
}

// NewOutcomeDispatcher creates a new outcome dispatcher
func NewOutcomeDispatcher(store *store.Store, eventPublisher *broker.EventPublisher) *OutcomeDispatcher {
	return &OutcomeDispatcher{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		delivered:      make(map[string]string),
	}
}

// Deliver records an outcome for the attempt identified by orderID
func (d *OutcomeDispatcher) Deliver(ctx context.Context, orderID, outcome string) error {
	ctx, span := util.StartSpan(ctx, "OutcomeDispatcher.Deliver")
	defer span.End()

	status, ok := attemptStatusForOutcome[outcome]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}

	d.mu.Lock()
	if prev, dup := d.delivered[orderID]; dup {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s already reported %s", ErrOutcomeAlreadyDelivered, orderID, prev)
	}
	d.delivered[orderID] = outcome
	d.mu.Unlock()

	attempt, err := d.store.GetCheckoutAttemptByOrderID(ctx, orderID)
	if err != nil {
		d.forget(orderID)
		return err
	}

	if isTerminal(attempt.Status) {
		return fmt.Errorf("%w: %s is already %s", ErrOutcomeAlreadyDelivered, orderID, attempt.Status)
	}

	if err := d.store.UpdateAttemptStatus(ctx, orderID, status); err != nil {
		d.forget(orderID)
		return fmt.Errorf("failed to update attempt status: %w", err)
	}

	util.PaymentOutcomesTotal.WithLabelValues(outcome).Inc()
	d.logger.Info("Payment outcome delivered",
		zap.String("order_id", orderID),
		zap.String("outcome", outcome))

	event := &models.PaymentOutcomeEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentOutcome,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		Outcome: outcome,
	}
	if err := d.eventPublisher.PublishPaymentOutcome(ctx, event); err != nil {
		d.logger.Error("Failed to publish PaymentOutcome event", zap.Error(err))
	}

	return nil
}

// forget clears the in-memory delivery mark so a failed delivery can be
// retried by the caller.
func (d *OutcomeDispatcher) forget(orderID string) {
	d.mu.Lock()
	delete(d.delivered, orderID)
	d.mu.Unlock()
}

func isTerminal(status string) bool {
	switch status {
	case models.AttemptStatusPaid, models.AttemptStatusPending,
		models.AttemptStatusFailed, models.AttemptStatusClosed,
		models.AttemptStatusUnknown:
		return true
	}
	return false
}
