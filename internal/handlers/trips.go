package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Trips handlers

// ListTrips - GET /api/trips
func (h *Handlers) ListTrips(c *gin.Context) {
	response, err := h.services.Trips.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list trips")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetTrip - GET /api/trips/:id
func (h *Handlers) GetTrip(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	trip, err := h.services.Trips.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get trip")
		return
	}

	c.JSON(http.StatusOK, trip)
}

// ListAvailableSeats - GET /api/trips/:id/seats
// The free-seat view is derived from reservation state at request time,
// so it already excludes seats held by fresh PENDING reservations and
// includes seats whose hold expired even if the sweeper has not run.
func (h *Handlers) ListAvailableSeats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	response, err := h.services.Trips.AvailableSeats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list available seats")
		return
	}

	c.JSON(http.StatusOK, response)
}
