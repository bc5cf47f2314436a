package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderIDDistinct(t *testing.T) {
	first := NewOrderID()
	second := NewOrderID()

	assert.True(t, strings.HasPrefix(first, "ORDER-"))
	assert.True(t, strings.HasPrefix(second, "ORDER-"))
	assert.NotEqual(t, first, second, "sequential submissions must mint distinct order ids")
}

func TestResolveOrderIDBindsAndReuses(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient, err := redisclient.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer redisClient.Close()

	svc := NewCheckoutService(nil, redisClient, nil, nil, time.Minute)
	ctx := context.Background()

	first, err := svc.resolveOrderID(ctx, "retry-key")
	require.NoError(t, err)

	// The same key must map back to the first bound order id.
	second, err := svc.resolveOrderID(ctx, "retry-key")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Keyless submissions always mint a fresh id.
	fresh, err := svc.resolveOrderID(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, first, fresh)
}

func TestResolveOrderIDLostBindRace(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient, err := redisclient.NewClient(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer redisClient.Close()

	svc := NewCheckoutService(nil, redisClient, nil, nil, time.Minute)
	ctx := context.Background()

	// Another submission binds the key after our lookup would have missed.
	bound, err := redisClient.BindOrderID(ctx, "racy-key", "ORDER-WINNER", time.Minute)
	require.NoError(t, err)
	require.True(t, bound)

	orderID, err := svc.resolveOrderID(ctx, "racy-key")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-WINNER", orderID)
}

func TestValidateContactDigitalProduct(t *testing.T) {
	product := &models.Product{ID: "p1", IsDigital: true}

	err := validateContact(product, &CustomerInfo{
		Name:  "Budi",
		Email: "budi@example.com",
		Phone: "0812345678",
	})
	assert.NoError(t, err)

	err = validateContact(product, &CustomerInfo{
		Name:  "Budi",
		Email: "  ",
		Phone: "0812345678",
	})
	assert.ErrorIs(t, err, ErrIncompleteForm)
}

func TestValidateContactPhysicalProductRequiresShipping(t *testing.T) {
	product := &models.Product{ID: "p2", IsDigital: false}

	contact := &CustomerInfo{
		Name:  "Budi",
		Email: "budi@example.com",
		Phone: "0812345678",
	}
	assert.ErrorIs(t, validateContact(product, contact), ErrIncompleteForm)

	contact.Address = "Jl. Contoh No. 123"
	contact.City = "Jakarta"
	contact.PostalCode = "12345"
	assert.NoError(t, validateContact(product, contact))
}

func TestQrisAttemptRecordedAsUnknown(t *testing.T) {
	product := &models.Product{
		ID:           "p1",
		Name:         "Kelas Desain",
		Price:        50000,
		QrisImageURL: "data:image/png;base64,abc",
		IsDigital:    true,
	}
	req := &CheckoutRequest{ProductID: "p1", Quantity: 2, PaymentMethod: PaymentMethodQris}

	attempt := newQrisAttempt(product, req, "ORDER-1")

	assert.Equal(t, models.AttemptStatusUnknown, attempt.Status)
	assert.Equal(t, int64(100000), attempt.GrossAmount)
	// Settlement is out of band, so the attempt must reject popup outcomes.
	assert.True(t, isTerminal(attempt.Status))
}

func TestRequestTokenIntegration(t *testing.T) {
	// Requires database, Redis and Kafka; covered by the handler tests
	// against an httptest gateway.
	t.Skip("Integration test - requires backing services")
}
