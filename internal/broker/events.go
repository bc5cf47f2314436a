package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing checkout domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCheckoutStarted publishes CheckoutStarted event
func (ep *EventPublisher) PublishCheckoutStarted(ctx context.Context, event *models.CheckoutStartedEvent) error {
	return ep.producer.PublishEvent(ctx, event.OrderID, event)
}

// PublishTokenIssued publishes TokenIssued event
func (ep *EventPublisher) PublishTokenIssued(ctx context.Context, event *models.TokenIssuedEvent) error {
	return ep.producer.PublishEvent(ctx, event.OrderID, event)
}

// PublishTokenFailed publishes TokenFailed event
func (ep *EventPublisher) PublishTokenFailed(ctx context.Context, event *models.TokenFailedEvent) error {
	return ep.producer.PublishEvent(ctx, event.OrderID, event)
}

// PublishPaymentOutcome publishes PaymentOutcome event
func (ep *EventPublisher) PublishPaymentOutcome(ctx context.Context, event *models.PaymentOutcomeEvent) error {
	return ep.producer.PublishEvent(ctx, event.OrderID, event)
}

// EventHandler routes incoming events to registered handlers
type EventHandler struct {
	onPaymentOutcome func(context.Context, *models.PaymentOutcomeEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPaymentOutcome registers a handler for PaymentOutcome events
func (eh *EventHandler) OnPaymentOutcome(handler func(context.Context, *models.PaymentOutcomeEvent) error) {
	eh.onPaymentOutcome = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePaymentOutcome:
		if eh.onPaymentOutcome != nil {
			var event models.PaymentOutcomeEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PaymentOutcome event: %w", err)
			}
			return eh.onPaymentOutcome(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
