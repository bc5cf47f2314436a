package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/gateway"
	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrIncompleteForm indicates required buyer fields are missing
var ErrIncompleteForm = errors.New("incomplete buyer details")

// CheckoutService drives the token-request half of a checkout attempt
type CheckoutService struct {
	store          *store.Store
	redis          *redisclient.Client
	gateway        *gateway.Client
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
	idempotencyTTL time.Duration
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	store *store.Store,
	redis *redisclient.Client,
	gw *gateway.Client,
	eventPublisher *broker.EventPublisher,
	idempotencyTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		store:          store,
		redis:          redis,
		gateway:        gw,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		idempotencyTTL: idempotencyTTL,
	}
}

// PaymentMethodQris selects the offline QRIS flow instead of the hosted popup
const PaymentMethodQris = "qris"

// CheckoutRequest represents a buyer submitting the checkout form
type CheckoutRequest struct {
	ProductID      string       `json:"product_id" binding:"required"`
	Quantity       int          `json:"quantity"`
	Customer       CustomerInfo `json:"customer"`
	ProductURL     string       `json:"product_url,omitempty"`
	PaymentMethod  string       `json:"payment_method,omitempty"`
	IdempotencyKey string       `json:"idempotency_key,omitempty"`
}

// CustomerInfo holds buyer-entered contact and shipping fields
type CustomerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// TokenResult is the outcome of a successful token request. QRIS checkouts
// carry no token; the buyer pays by scanning the returned image.
type TokenResult struct {
	OrderID      string `json:"order_id"`
	Token        string `json:"token,omitempty"`
	RedirectURL  string `json:"redirect_url,omitempty"`
	QrisImageURL string `json:"qris_image_url,omitempty"`
}

// RequestToken validates the form, mints an order id, and requests a payment
// token from the gateway. Without an idempotency key every submission mints a
// fresh order id, so a retried attempt and a new order are indistinguishable
// to the gateway. Supplying a key reuses the bound order id.
func (s *CheckoutService) RequestToken(ctx context.Context, req *CheckoutRequest) (*TokenResult, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.RequestToken")
	defer span.End()

	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := s.store.GetProductByID(ctx, req.ProductID)
	if err != nil {
		util.TokenRequestsFailedTotal.WithLabelValues("product_not_found").Inc()
		return nil, err
	}

	if err := validateContact(product, &req.Customer); err != nil {
		util.TokenRequestsFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	orderID, err := s.resolveOrderID(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod == PaymentMethodQris {
		return s.recordQrisAttempt(ctx, product, req, orderID)
	}

	attempt := &models.CheckoutAttempt{
		OrderID:        orderID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		GrossAmount:    product.Price * int64(req.Quantity),
		Quantity:       req.Quantity,
		Status:         models.AttemptStatusRequested,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.store.CreateCheckoutAttempt(ctx, attempt); err != nil {
		util.TokenRequestsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to record checkout attempt: %w", err)
	}

	util.CheckoutAttemptsTotal.Inc()
	s.logger.Info("Checkout attempt started",
		zap.String("order_id", orderID),
		zap.String("product_id", product.ID))

	startedEvent := &models.CheckoutStartedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutStarted,
			Timestamp: time.Now(),
		},
		OrderID:     orderID,
		ProductID:   product.ID,
		GrossAmount: attempt.GrossAmount,
		Quantity:    req.Quantity,
	}
	if err := s.eventPublisher.PublishCheckoutStarted(ctx, startedEvent); err != nil {
		s.logger.Error("Failed to publish CheckoutStarted event", zap.Error(err))
	}

	tokenReq := &gateway.TokenRequest{
		OrderID:         orderID,
		ProductName:     product.Name,
		Price:           product.Price,
		Quantity:        req.Quantity,
		ProductURL:      req.ProductURL,
		ProductCategory: product.Category,
		CustomerDetails: &gateway.CustomerDetails{
			FirstName:  req.Customer.Name,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
			Address:    req.Customer.Address,
			City:       req.Customer.City,
			PostalCode: req.Customer.PostalCode,
		},
	}

	snapResp, err := s.gateway.CreateTransaction(ctx, gateway.BuildSnapRequest(tokenReq))
	if err != nil {
		if dbErr := s.store.UpdateAttemptStatus(ctx, orderID, models.AttemptStatusFailed); dbErr != nil {
			s.logger.Error("Failed to mark attempt failed",
				zap.String("order_id", orderID), zap.Error(dbErr))
		}
		util.TokenRequestsFailedTotal.WithLabelValues(failureReason(err)).Inc()

		failedEvent := &models.TokenFailedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeTokenFailed,
				Timestamp: time.Now(),
			},
			OrderID: orderID,
			Reason:  err.Error(),
		}
		if pubErr := s.eventPublisher.PublishTokenFailed(ctx, failedEvent); pubErr != nil {
			s.logger.Error("Failed to publish TokenFailed event", zap.Error(pubErr))
		}

		return nil, fmt.Errorf("token request failed: %w", err)
	}

	if err := s.store.SetAttemptToken(ctx, orderID, snapResp.Token); err != nil {
		s.logger.Error("Failed to store token on attempt",
			zap.String("order_id", orderID), zap.Error(err))
	}

	util.TokensIssuedTotal.Inc()
	s.logger.Info("Payment token issued", zap.String("order_id", orderID))

	issuedEvent := &models.TokenIssuedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeTokenIssued,
			Timestamp: time.Now(),
		},
		OrderID:     orderID,
		Token:       snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
	}
	if err := s.eventPublisher.PublishTokenIssued(ctx, issuedEvent); err != nil {
		s.logger.Error("Failed to publish TokenIssued event", zap.Error(err))
	}

	return &TokenResult{
		OrderID:     orderID,
		Token:       snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
	}, nil
}

// recordQrisAttempt handles the offline QRIS flow. No gateway call is made:
// the buyer scans the merchant's QR image and settlement happens out of band,
// so the attempt is recorded terminal from the start.
func (s *CheckoutService) recordQrisAttempt(ctx context.Context, product *models.Product, req *CheckoutRequest, orderID string) (*TokenResult, error) {
	attempt := newQrisAttempt(product, req, orderID)

	if err := s.store.CreateCheckoutAttempt(ctx, attempt); err != nil {
		util.TokenRequestsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to record checkout attempt: %w", err)
	}

	util.CheckoutAttemptsTotal.Inc()
	s.logger.Info("QRIS checkout recorded",
		zap.String("order_id", orderID),
		zap.String("product_id", product.ID))

	startedEvent := &models.CheckoutStartedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCheckoutStarted,
			Timestamp: time.Now(),
		},
		OrderID:     orderID,
		ProductID:   product.ID,
		GrossAmount: attempt.GrossAmount,
		Quantity:    req.Quantity,
	}
	if err := s.eventPublisher.PublishCheckoutStarted(ctx, startedEvent); err != nil {
		s.logger.Error("Failed to publish CheckoutStarted event", zap.Error(err))
	}

	return &TokenResult{
		OrderID:      orderID,
		QrisImageURL: product.QrisImageURL,
	}, nil
}

// newQrisAttempt builds the record for an offline QRIS payment
func newQrisAttempt(product *models.Product, req *CheckoutRequest, orderID string) *models.CheckoutAttempt {
	return &models.CheckoutAttempt{
		OrderID:        orderID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		GrossAmount:    product.Price * int64(req.Quantity),
		Quantity:       req.Quantity,
		Status:         models.AttemptStatusUnknown,
		IdempotencyKey: req.IdempotencyKey,
	}
}

// GetAttempt retrieves a checkout attempt by order id
func (s *CheckoutService) GetAttempt(ctx context.Context, orderID string) (*models.CheckoutAttempt, error) {
	return s.store.GetCheckoutAttemptByOrderID(ctx, orderID)
}

// resolveOrderID returns the order id for this submission. A known
// idempotency key maps back to its original order id; otherwise a fresh id is
// minted and, when a key was supplied, bound to it.
func (s *CheckoutService) resolveOrderID(ctx context.Context, idempotencyKey string) (string, error) {
	if idempotencyKey == "" {
		return NewOrderID(), nil
	}

	existing, err := s.redis.OrderIDForKey(ctx, idempotencyKey)
	if err != nil {
		return "", fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if existing != "" {
		s.logger.Info("Reusing order id for retried submission",
			zap.String("order_id", existing))
		return existing, nil
	}

	orderID := NewOrderID()
	bound, err := s.redis.BindOrderID(ctx, idempotencyKey, orderID, s.idempotencyTTL)
	if err != nil {
		return "", fmt.Errorf("failed to bind idempotency key: %w", err)
	}
	if !bound {
		// A concurrent submission with the same key won the bind between our
		// lookup and the SetNX. Use its order id, not the one minted here.
		winner, err := s.redis.OrderIDForKey(ctx, idempotencyKey)
		if err != nil {
			return "", fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if winner != "" {
			s.logger.Info("Reusing order id bound by concurrent submission",
				zap.String("order_id", winner))
			return winner, nil
		}
	}
	return orderID, nil
}

const orderIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewOrderID mints a locally-unique order identifier. Timestamp plus random
// suffix is enough; the gateway is the source of truth for uniqueness.
func NewOrderID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
	}
	return fmt.Sprintf("ORDER-%d-%s", time.Now().UnixMilli(), suffix)
}

// validateContact enforces the form rules: contact fields are always
// required, physical goods additionally require a shipping address.
func validateContact(product *models.Product, c *CustomerInfo) error {
	if strings.TrimSpace(c.Name) == "" ||
		strings.TrimSpace(c.Email) == "" ||
		strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: name, email and phone are required", ErrIncompleteForm)
	}

	if !product.IsDigital {
		if strings.TrimSpace(c.Address) == "" ||
			strings.TrimSpace(c.City) == "" ||
			strings.TrimSpace(c.PostalCode) == "" {
			return fmt.Errorf("%w: address, city and postal code are required for physical goods", ErrIncompleteForm)
		}
	}

	return nil
}

func failureReason(err error) string {
	if errors.Is(err, gateway.ErrServerKeyMissing) {
		return "missing_credential"
	}
	return "gateway_error"
}
