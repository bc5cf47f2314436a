package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/internal/gateway"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRouter(gatewayClient *gateway.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := &Handler{gatewayClient: gatewayClient}
	router.OPTIONS("/create-payment-token", h.tokenPreflight)
	router.POST("/create-payment-token", h.createPaymentToken)

	return router
}

func TestTokenPreflight(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	router := newTokenRouter(gateway.NewClient("key", upstream.URL))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/create-payment-token", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type",
		w.Header().Get("Access-Control-Allow-Headers"))
	assert.False(t, called, "preflight must not reach the gateway")
}

func TestCreatePaymentTokenValidation(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	router := newTokenRouter(gateway.NewClient("key", upstream.URL))

	cases := []map[string]interface{}{
		{"productName": "Ebook", "price": 50000, "quantity": 1},      // no orderId
		{"orderId": "ORDER-1", "price": 50000, "quantity": 1},        // no productName
		{"orderId": "ORDER-1", "productName": "Ebook", "quantity": 1},// no price
		{"orderId": "ORDER-1", "productName": "Ebook", "price": 0, "quantity": 1},
		{"orderId": "ORDER-1", "productName": "Ebook", "price": 50000, "quantity": 0},
	}

	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/create-payment-token", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %v", payload)
	}

	assert.False(t, called, "invalid payloads must not reach the gateway")
}

func TestCreatePaymentTokenMissingServerKey(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	router := newTokenRouter(gateway.NewClient("", upstream.URL))

	body, _ := json.Marshal(map[string]interface{}{
		"orderId":     "ORDER-1",
		"productName": "Ebook",
		"price":       50000,
		"quantity":    1,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-payment-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
	assert.False(t, called, "missing credential must not reach the gateway")
}

func TestCreatePaymentTokenSuccess(t *testing.T) {
	var gotSnap gateway.SnapRequest

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotSnap)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(gateway.SnapResponse{
			Token:       "snap-token-xyz",
			RedirectURL: "https://pay.example.com/r",
		})
	}))
	defer upstream.Close()

	router := newTokenRouter(gateway.NewClient("SB-Mid-server-key", upstream.URL))

	body, _ := json.Marshal(map[string]interface{}{
		"orderId":     "ORDER-42",
		"productName": "Kelas Desain",
		"price":       150000,
		"quantity":    2,
		"customerDetails": map[string]string{
			"firstName": "Budi",
			"email":     "budi@example.com",
			"phone":     "0812345678",
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-payment-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "snap-token-xyz", resp["token"])
	assert.Equal(t, "https://pay.example.com/r", resp["redirect_url"])

	assert.Equal(t, int64(300000), gotSnap.TransactionDetails.GrossAmount)
	require.NotNil(t, gotSnap.CustomerDetails)
	assert.Equal(t, "Budi", gotSnap.CustomerDetails.FirstName)
	assert.Nil(t, gotSnap.CustomerDetails.ShippingAddress)
}

func TestCreatePaymentTokenGatewayError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_messages":["transaction_details.gross_amount is not equal to the sum of item_details"]}`))
	}))
	defer upstream.Close()

	router := newTokenRouter(gateway.NewClient("key", upstream.URL))

	body, _ := json.Marshal(map[string]interface{}{
		"orderId":     "ORDER-1",
		"productName": "Ebook",
		"price":       50000,
		"quantity":    1,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/create-payment-token", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "gross_amount is not equal")
}
