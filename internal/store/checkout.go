package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// CreateCheckoutAttempt records a new checkout attempt
func (s *Store) CreateCheckoutAttempt(ctx context.Context, attempt *models.CheckoutAttempt) error {
	query := `
		INSERT INTO checkout_attempts (order_id, product_id, product_name, gross_amount, quantity, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, attempt, query,
		attempt.OrderID, attempt.ProductID, attempt.ProductName,
		attempt.GrossAmount, attempt.Quantity, attempt.Status, attempt.IdempotencyKey)
}

// GetCheckoutAttemptByOrderID retrieves an attempt by its order id
func (s *Store) GetCheckoutAttemptByOrderID(ctx context.Context, orderID string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	err := s.db.GetContext(ctx, &attempt,
		"SELECT * FROM checkout_attempts WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("checkout attempt not found: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// UpdateAttemptStatus updates the status of a checkout attempt
func (s *Store) UpdateAttemptStatus(ctx context.Context, orderID, status string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE checkout_attempts SET status = $1, updated_at = NOW() WHERE order_id = $2",
		status, orderID)
	return err
}

// SetAttemptToken stores the issued gateway token on an attempt
func (s *Store) SetAttemptToken(ctx context.Context, orderID, token string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE checkout_attempts SET token = $1, status = $2, updated_at = NOW() WHERE order_id = $3",
		token, models.AttemptStatusTokenIssued, orderID)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
