package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapar/internal/models"
	"sapar/internal/repository"
	"sapar/internal/service"
)

type testEnv struct {
	router   *gin.Engine
	mem      *repository.MemoryStore
	riderID  int64
	opID     int64
	tripID   int64
	services *service.Services
}

// setupRouter wires the real handlers over the memory store. Auth is
// replaced by a middleware that injects the given user id, the way
// BasicAuth does after verifying credentials.
func setupRouter() *testEnv {
	gin.SetMode(gin.TestMode)

	mem := repository.NewMemoryStore()
	riderID := mem.AddUser("rider@test", "hash", "Rider", models.RoleRider, true)
	opID := mem.AddUser("op@test", "hash", "Operator", models.RoleOperator, true)
	routeID := mem.AddRoute("Almaty", "Astana")
	vehicleID := mem.AddVehicle("KZ001", "Yutong", []string{"1A", "1B"})
	departure := time.Now().Add(24 * time.Hour)
	tripID := mem.AddTrip(routeID, vehicleID, departure, departure.Add(16*time.Hour), 3000, models.TripOpen)

	services := service.NewServices(mem.Stores(), nil, 15*time.Minute)
	h := NewHandlers(services)

	env := &testEnv{mem: mem, riderID: riderID, opID: opID, tripID: tripID, services: services}

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		if v := c.GetHeader("X-Test-User"); v != "" {
			switch v {
			case "rider":
				c.Set("user_id", riderID)
			case "operator":
				c.Set("user_id", opID)
			}
		}
		c.Next()
	})
	{
		api.GET("/trips", h.ListTrips)
		api.GET("/trips/:id", h.GetTrip)
		api.GET("/trips/:id/seats", h.ListAvailableSeats)
		api.POST("/reservations", h.CreateReservation)
		api.GET("/reservations", h.ListReservations)
		api.POST("/payments", h.SettlePayment)
		api.POST("/tickets/validate", h.ValidateTicket)
	}

	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, user string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestListTripsEndpoint(t *testing.T) {
	env := setupRouter()

	w := env.do(t, "GET", "/api/trips", "rider", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var trips []models.ListTripsResponseItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, "Almaty", trips[0].Origin)
}

func TestAvailableSeatsEndpoint(t *testing.T) {
	env := setupRouter()

	w := env.do(t, "GET", fmt.Sprintf("/api/trips/%d/seats", env.tripID), "rider", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AvailableSeatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1A", "1B"}, resp.Seats)

	w = env.do(t, "GET", "/api/trips/999/seats", "rider", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, "GET", "/api/trips/abc/seats", "rider", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationEndpoint(t *testing.T) {
	env := setupRouter()

	body := models.CreateReservationRequest{TripID: env.tripID, Seats: []string{"1A"}}

	w := env.do(t, "POST", "/api/reservations", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, "POST", "/api/reservations", "rider", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp models.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ReservationPending, resp.Status)
	assert.Equal(t, int64(3000), resp.TotalCents)

	// Same seat again: conflict.
	w = env.do(t, "POST", "/api/reservations", "operator", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown seat label: validation error.
	w = env.do(t, "POST", "/api/reservations", "rider",
		models.CreateReservationRequest{TripID: env.tripID, Seats: []string{"9Z"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettlePaymentEndpoint(t *testing.T) {
	env := setupRouter()

	w := env.do(t, "POST", "/api/reservations", "rider",
		models.CreateReservationRequest{TripID: env.tripID, Seats: []string{"1A"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	w = env.do(t, "POST", "/api/payments", "rider",
		models.SettlePaymentRequest{ReservationID: res.ID, Method: "card", AmountCents: res.TotalCents})
	assert.Equal(t, http.StatusOK, w.Code)

	var settle models.SettlePaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settle))
	assert.Equal(t, models.PaymentPaid, settle.Result)
	assert.Equal(t, models.ReservationConfirmed, settle.ReservationStatus)

	// Settling a terminal reservation is a conflict.
	w = env.do(t, "POST", "/api/payments", "rider",
		models.SettlePaymentRequest{ReservationID: res.ID, Method: "card", AmountCents: res.TotalCents})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Another user's reservation is forbidden.
	w = env.do(t, "POST", "/api/payments", "operator",
		models.SettlePaymentRequest{ReservationID: res.ID, Method: "card", AmountCents: res.TotalCents})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestValidateTicketEndpoint(t *testing.T) {
	env := setupRouter()

	w := env.do(t, "POST", "/api/reservations", "rider",
		models.CreateReservationRequest{TripID: env.tripID, Seats: []string{"1B"}})
	require.Equal(t, http.StatusCreated, w.Code)
	var res models.CreateReservationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))

	body := models.ValidateTicketRequest{TicketCode: res.TicketCode}

	// Pending ticket: conflict.
	w = env.do(t, "POST", "/api/tickets/validate", "operator", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "POST", "/api/payments", "rider",
		models.SettlePaymentRequest{ReservationID: res.ID, Method: "card", AmountCents: res.TotalCents})
	require.Equal(t, http.StatusOK, w.Code)

	// Riders may not validate.
	w = env.do(t, "POST", "/api/tickets/validate", "rider", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "POST", "/api/tickets/validate", "operator", body)
	assert.Equal(t, http.StatusOK, w.Code)

	// One shot only.
	w = env.do(t, "POST", "/api/tickets/validate", "operator", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "POST", "/api/tickets/validate", "operator",
		models.ValidateTicketRequest{TicketCode: "SPR-0-ffffffffffff"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReservationsEndpoint(t *testing.T) {
	env := setupRouter()

	w := env.do(t, "POST", "/api/reservations", "rider",
		models.CreateReservationRequest{TripID: env.tripID, Seats: []string{"1A"}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, "GET", "/api/reservations", "rider", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var list []models.ListReservationsResponseItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, []string{"1A"}, list[0].Seats)

	// The operator has no reservations.
	w = env.do(t, "GET", "/api/reservations", "operator", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list)
}
