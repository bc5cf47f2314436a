package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/util"
)

const snapTransactionsPath = "/snap/v1/transactions"

// ErrServerKeyMissing indicates the gateway server key is not configured.
// Checked per request so an unset key fails that request, not the process.
var ErrServerKeyMissing = errors.New("payment gateway server key not configured")

// TokenRequest is the inbound payload of the token endpoint
type TokenRequest struct {
	OrderID         string           `json:"orderId" binding:"required"`
	ProductName     string           `json:"productName" binding:"required"`
	Price           int64            `json:"price" binding:"required,min=1"`
	Quantity        int              `json:"quantity" binding:"required,min=1"`
	ProductURL      string           `json:"productUrl,omitempty"`
	ProductCategory string           `json:"productCategory,omitempty"`
	CustomerDetails *CustomerDetails `json:"customerDetails,omitempty"`
}

// CustomerDetails carries buyer contact and shipping fields
type CustomerDetails struct {
	FirstName  string `json:"firstName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// SnapRequest is the transaction shape expected by the Snap API
type SnapRequest struct {
	TransactionDetails TransactionDetails   `json:"transaction_details"`
	ItemDetails        []ItemDetail         `json:"item_details"`
	CreditCard         CreditCard           `json:"credit_card"`
	CustomerDetails    *SnapCustomerDetails `json:"customer_details,omitempty"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type ItemDetail struct {
	ID       string `json:"id"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	URL      string `json:"url,omitempty"`
}

type CreditCard struct {
	Secure bool `json:"secure"`
}

type SnapCustomerDetails struct {
	FirstName       string           `json:"first_name,omitempty"`
	Email           string           `json:"email,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
}

type ShippingAddress struct {
	FirstName   string `json:"first_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	CountryCode string `json:"country_code"`
}

// SnapResponse is the successful token response
type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type snapErrorResponse struct {
	ErrorMessages []string `json:"error_messages"`
}

// Client calls the Midtrans Snap transaction-creation API
type Client struct {
	serverKey  string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Snap gateway client
func NewClient(serverKey, baseURL string) *Client {
	return &Client{
		serverKey:  serverKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// BuildSnapRequest converts a token request into the gateway transaction
// shape. Gross amount is price times quantity in the smallest currency unit.
// The customer block is attached only when at least one contact field is
// non-blank, and shipping only when an address is present.
func BuildSnapRequest(req *TokenRequest) *SnapRequest {
	snap := &SnapRequest{
		TransactionDetails: TransactionDetails{
			OrderID:     req.OrderID,
			GrossAmount: req.Price * int64(req.Quantity),
		},
		ItemDetails: []ItemDetail{
			{
				ID:       req.OrderID,
				Price:    req.Price,
				Quantity: req.Quantity,
				Name:     req.ProductName,
				Category: req.ProductCategory,
				URL:      req.ProductURL,
			},
		},
		CreditCard: CreditCard{Secure: true},
	}

	if req.CustomerDetails == nil {
		return snap
	}

	name := strings.TrimSpace(req.CustomerDetails.FirstName)
	email := strings.TrimSpace(req.CustomerDetails.Email)
	phone := strings.TrimSpace(req.CustomerDetails.Phone)
	if name == "" && email == "" && phone == "" {
		return snap
	}

	customer := &SnapCustomerDetails{
		FirstName: name,
		Email:     email,
		Phone:     phone,
	}

	if address := strings.TrimSpace(req.CustomerDetails.Address); address != "" {
		customer.ShippingAddress = &ShippingAddress{
			FirstName:   name,
			Phone:       phone,
			Address:     address,
			City:        strings.TrimSpace(req.CustomerDetails.City),
			PostalCode:  strings.TrimSpace(req.CustomerDetails.PostalCode),
			CountryCode: "IDN",
		}
	}

	snap.CustomerDetails = customer
	return snap
}

// CreateTransaction requests a payment token from the gateway. Single
// attempt, no retry: a failed call surfaces to the caller, who may resubmit.
func (c *Client) CreateTransaction(ctx context.Context, snap *SnapRequest) (*SnapResponse, error) {
	if c.serverKey == "" {
		return nil, ErrServerKeyMissing
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+snapTransactionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	// Snap auth is Basic with the server key as username, empty password.
	httpReq.SetBasicAuth(c.serverKey, "")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	util.GatewayRequestLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("gateway call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr snapErrorResponse
		if err := json.Unmarshal(respBody, &gwErr); err == nil && len(gwErr.ErrorMessages) > 0 {
			return nil, fmt.Errorf("gateway rejected transaction: %s", gwErr.ErrorMessages[0])
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var snapResp SnapResponse
	if err := json.Unmarshal(respBody, &snapResp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return &snapResp, nil
}
