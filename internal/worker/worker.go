package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

// OutcomeWorker finalizes checkout attempts from payment outcome events
type OutcomeWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
}

// NewOutcomeWorker creates a new outcome worker
func NewOutcomeWorker(consumer *broker.Consumer, st *store.Store) *OutcomeWorker {
	w := &OutcomeWorker{
		consumer: consumer,
		store:    st,
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnPaymentOutcome(w.handleOutcome)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *OutcomeWorker) Start(ctx context.Context) error {
	log.Println("Starting outcome worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OutcomeWorker) Stop() error {
	log.Println("Stopping outcome worker...")
	return w.consumer.Close()
}

// handleOutcome applies the follow-up effects of a payment outcome. Event
// processing is idempotent: a redelivered event is skipped.
func (w *OutcomeWorker) handleOutcome(ctx context.Context, event *models.PaymentOutcomeEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		log.Printf("Event already processed: %s", event.EventID)
		return nil
	}

	if event.Outcome == models.OutcomeSuccess {
		attempt, err := w.store.GetCheckoutAttemptByOrderID(ctx, event.OrderID)
		if err != nil {
			return err
		}

		if err := w.store.IncrementProductCustomers(ctx, attempt.ProductID); err != nil {
			log.Printf("Failed to bump customer count for product %s: %v", attempt.ProductID, err)
		}
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		log.Printf("Failed to mark event processed: %v", err)
	}

	return nil
}
