package models

// API request/response shapes. Prices travel as integer minor units;
// ticket codes are opaque strings.

// CreateReservationRequest - request body for POST /api/reservations
type CreateReservationRequest struct {
	TripID int64    `json:"trip_id" binding:"required"`
	Seats  []string `json:"seats" binding:"required"`
}

// CreateReservationResponse - response for a created reservation
type CreateReservationResponse struct {
	ID         int64    `json:"id"`
	TicketCode string   `json:"ticket_code"`
	TotalCents int64    `json:"total_cents"`
	Status     string   `json:"status"`
	Seats      []string `json:"seats"`
}

// SettlePaymentRequest - request body for POST /api/payments
type SettlePaymentRequest struct {
	ReservationID int64  `json:"reservation_id" binding:"required"`
	Method        string `json:"method" binding:"required"`
	AmountCents   int64  `json:"amount_cents"`
}

// SettlePaymentResponse - outcome of a settlement attempt
type SettlePaymentResponse struct {
	PaymentID         int64  `json:"payment_id"`
	Result            string `json:"result"`
	ReservationStatus string `json:"reservation_status"`
}

// ValidateTicketRequest - request body for POST /api/tickets/validate
type ValidateTicketRequest struct {
	TicketCode string `json:"ticket_code" binding:"required"`
}

// AvailableSeatsResponse - free seat labels for a trip
type AvailableSeatsResponse struct {
	TripID int64    `json:"trip_id"`
	Seats  []string `json:"seats"`
}

// ListTripsResponseItem - element of the trip listing
type ListTripsResponseItem struct {
	ID          int64  `json:"id"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	TravelDate  string `json:"travel_date"`
	DepartsAt   string `json:"departs_at"`
	ArrivesAt   string `json:"arrives_at"`
	PriceCents  int64  `json:"price_cents"`
	Status      string `json:"status"`
}

// ListReservationsResponseItem - element of a rider's reservation history
type ListReservationsResponseItem struct {
	ID         int64    `json:"id"`
	TripID     int64    `json:"trip_id"`
	Status     string   `json:"status"`
	TotalCents int64    `json:"total_cents"`
	TicketCode string   `json:"ticket_code"`
	Seats      []string `json:"seats,omitempty"`
}
