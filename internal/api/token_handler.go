package api

import (
	"errors"
	"net/http"

	"storefront-service/internal/gateway"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
)

// CORS headers required by browser clients of the token endpoint
const (
	corsAllowOrigin  = "*"
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
)

func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", corsAllowOrigin)
	c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
}

// tokenPreflight answers the CORS preflight with an empty 200 before any
// business logic runs.
func (h *Handler) tokenPreflight(c *gin.Context) {
	setCORSHeaders(c)
	c.Status(http.StatusOK)
}

// createPaymentToken is the pass-through token endpoint: validate the
// payload, call the gateway once, forward {token, redirect_url}. No retry; a
// resubmission from the client arrives with a fresh order id.
func (h *Handler) createPaymentToken(c *gin.Context) {
	setCORSHeaders(c)

	var req gateway.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.TokenRequestsFailedTotal.WithLabelValues("validation").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	snapReq := gateway.BuildSnapRequest(&req)

	snapResp, err := h.gatewayClient.CreateTransaction(c.Request.Context(), snapReq)
	if err != nil {
		if errors.Is(err, gateway.ErrServerKeyMissing) {
			util.TokenRequestsFailedTotal.WithLabelValues("missing_credential").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment gateway is not configured"})
			return
		}
		util.TokenRequestsFailedTotal.WithLabelValues("gateway_error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	util.TokensIssuedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"token":        snapResp.Token,
		"redirect_url": snapResp.RedirectURL,
	})
}
