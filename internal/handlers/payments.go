package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sapar/internal/models"
)

// Payments handlers

// SettlePayment - POST /api/payments
func (h *Handlers) SettlePayment(c *gin.Context) {
	var req models.SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AmountCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount_cents must not be negative"})
		return
	}

	riderID, ok := riderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	response, err := h.services.Payments.Settle(c.Request.Context(), riderID, &req)
	if err != nil {
		respondError(c, err, "Failed to settle payment")
		return
	}

	c.JSON(http.StatusOK, response)
}
