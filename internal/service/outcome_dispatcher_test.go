package service

import (
	"context"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDeliverRejectsUnknownOutcome(t *testing.T) {
	d := &OutcomeDispatcher{delivered: make(map[string]string)}

	err := d.Deliver(context.Background(), "ORDER-1", "paid")
	assert.ErrorIs(t, err, ErrUnknownOutcome)
}

func TestDeliverIsExclusivePerAttempt(t *testing.T) {
	d := &OutcomeDispatcher{delivered: map[string]string{
		"ORDER-1": models.OutcomeSuccess,
	}}

	// Once any outcome has fired for an attempt, none of the four may fire
	// again.
	for _, outcome := range []string{
		models.OutcomeSuccess,
		models.OutcomePending,
		models.OutcomeError,
		models.OutcomeClosed,
	} {
		err := d.Deliver(context.Background(), "ORDER-1", outcome)
		assert.ErrorIs(t, err, ErrOutcomeAlreadyDelivered, "outcome %s must be rejected", outcome)
	}
}

func TestOutcomeStatusMapping(t *testing.T) {
	assert.Equal(t, models.AttemptStatusPaid, attemptStatusForOutcome[models.OutcomeSuccess])
	assert.Equal(t, models.AttemptStatusPending, attemptStatusForOutcome[models.OutcomePending])
	assert.Equal(t, models.AttemptStatusFailed, attemptStatusForOutcome[models.OutcomeError])
	assert.Equal(t, models.AttemptStatusClosed, attemptStatusForOutcome[models.OutcomeClosed])
	assert.Len(t, attemptStatusForOutcome, 4)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(models.AttemptStatusRequested))
	assert.False(t, isTerminal(models.AttemptStatusTokenIssued))
	assert.True(t, isTerminal(models.AttemptStatusPaid))
	assert.True(t, isTerminal(models.AttemptStatusClosed))
	assert.True(t, isTerminal(models.AttemptStatusUnknown))
}
