package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sapar/internal/models"
)

// Tickets handlers

// ValidateTicket - POST /api/tickets/validate
// One-shot check-in: the first call for a confirmed ticket succeeds,
// every later call gets 409.
func (h *Handlers) ValidateTicket(c *gin.Context) {
	var req models.ValidateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	operatorID, ok := riderFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	validation, err := h.services.Tickets.Validate(c.Request.Context(), operatorID, req.TicketCode)
	if err != nil {
		respondError(c, err, "Failed to validate ticket")
		return
	}

	c.JSON(http.StatusOK, validation)
}
