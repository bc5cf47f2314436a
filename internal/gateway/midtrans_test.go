package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSnapRequestGrossAmount(t *testing.T) {
	snap := BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-1",
		ProductName: "Kelas Desain",
		Price:       150000,
		Quantity:    1,
	})

	assert.Equal(t, int64(150000), snap.TransactionDetails.GrossAmount)

	snap = BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-2",
		ProductName: "Kelas Desain",
		Price:       150000,
		Quantity:    3,
	})

	assert.Equal(t, int64(450000), snap.TransactionDetails.GrossAmount)
	require.Len(t, snap.ItemDetails, 1)
	assert.Equal(t, int64(150000), snap.ItemDetails[0].Price)
	assert.Equal(t, 3, snap.ItemDetails[0].Quantity)
	assert.Equal(t, "ORDER-2", snap.ItemDetails[0].ID)
	assert.True(t, snap.CreditCard.Secure)
}

func TestBuildSnapRequestOmitsBlankCustomer(t *testing.T) {
	snap := BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-3",
		ProductName: "Ebook",
		Price:       50000,
		Quantity:    1,
		CustomerDetails: &CustomerDetails{
			FirstName: "   ",
			Email:     "",
			Phone:     "\t",
		},
	})

	assert.Nil(t, snap.CustomerDetails)
}

func TestBuildSnapRequestIncludesCustomerWhenAnyFieldSet(t *testing.T) {
	snap := BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-4",
		ProductName: "Ebook",
		Price:       50000,
		Quantity:    1,
		CustomerDetails: &CustomerDetails{
			Email: "  budi@example.com ",
		},
	})

	require.NotNil(t, snap.CustomerDetails)
	assert.Equal(t, "budi@example.com", snap.CustomerDetails.Email)
	assert.Empty(t, snap.CustomerDetails.FirstName)
	assert.Nil(t, snap.CustomerDetails.ShippingAddress)
}

func TestBuildSnapRequestShippingAddress(t *testing.T) {
	req := &TokenRequest{
		OrderID:     "ORDER-5",
		ProductName: "Kaos",
		Price:       120000,
		Quantity:    2,
		CustomerDetails: &CustomerDetails{
			FirstName:  "Budi",
			Email:      "budi@example.com",
			Phone:      "0812345678",
			Address:    "Jl. Contoh No. 123",
			City:       "Jakarta",
			PostalCode: "12345",
		},
	}

	snap := BuildSnapRequest(req)
	require.NotNil(t, snap.CustomerDetails)
	require.NotNil(t, snap.CustomerDetails.ShippingAddress)
	assert.Equal(t, "IDN", snap.CustomerDetails.ShippingAddress.CountryCode)
	assert.Equal(t, "Jl. Contoh No. 123", snap.CustomerDetails.ShippingAddress.Address)
	assert.Equal(t, "Budi", snap.CustomerDetails.ShippingAddress.FirstName)

	// No address, no shipping block
	req.CustomerDetails.Address = ""
	snap = BuildSnapRequest(req)
	require.NotNil(t, snap.CustomerDetails)
	assert.Nil(t, snap.CustomerDetails.ShippingAddress)
}

func TestCreateTransactionMissingServerKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	_, err := client.CreateTransaction(context.Background(), BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-6",
		ProductName: "Ebook",
		Price:       50000,
		Quantity:    1,
	}))

	assert.ErrorIs(t, err, ErrServerKeyMissing)
	assert.False(t, called, "gateway must not be called without a server key")
}

func TestCreateTransactionSuccess(t *testing.T) {
	var gotAuthUser, gotAuthPass string
	var gotBody SnapRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SnapResponse{
			Token:       "snap-token-123",
			RedirectURL: "https://pay.example.com/redirect",
		})
	}))
	defer server.Close()

	client := NewClient("SB-Mid-server-key", server.URL)
	resp, err := client.CreateTransaction(context.Background(), BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-7",
		ProductName: "Kelas Desain",
		Price:       150000,
		Quantity:    1,
	}))

	require.NoError(t, err)
	assert.Equal(t, "snap-token-123", resp.Token)
	assert.Equal(t, "https://pay.example.com/redirect", resp.RedirectURL)
	assert.Equal(t, "SB-Mid-server-key", gotAuthUser)
	assert.Empty(t, gotAuthPass)
	assert.Equal(t, int64(150000), gotBody.TransactionDetails.GrossAmount)
	assert.Equal(t, "ORDER-7", gotBody.TransactionDetails.OrderID)
}

func TestCreateTransactionGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error_messages":["Access denied due to unauthorized transaction","second"]}`))
	}))
	defer server.Close()

	client := NewClient("bad-key", server.URL)
	_, err := client.CreateTransaction(context.Background(), BuildSnapRequest(&TokenRequest{
		OrderID:     "ORDER-8",
		ProductName: "Ebook",
		Price:       50000,
		Quantity:    1,
	}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access denied due to unauthorized transaction")
	assert.NotContains(t, err.Error(), "second")
}
