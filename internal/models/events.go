package models

import "time"

// NATS event subjects
const (
	EventReservationCreated   = "reservation.created"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationExpired   = "reservation.expired"
	EventTicketValidated      = "ticket.validated"
)

// ReservationCreatedEvent is published when a reservation enters PENDING
type ReservationCreatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	TripID        int64     `json:"trip_id"`
	RiderID       int64     `json:"rider_id"`
	SeatCount     int       `json:"seat_count"`
	TotalCents    int64     `json:"total_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationSettledEvent is published after payment settlement, for both
// the confirmed and the cancelled outcome
type ReservationSettledEvent struct {
	ReservationID int64     `json:"reservation_id"`
	TripID        int64     `json:"trip_id"`
	PaymentID     int64     `json:"payment_id"`
	Result        string    `json:"result"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationsExpiredEvent is published by the expiry sweep when it
// cancels at least one overdue reservation
type ReservationsExpiredEvent struct {
	Cancelled int64     `json:"cancelled"`
	Cutoff    time.Time `json:"cutoff"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketValidatedEvent is published when an operator checks in a ticket
type TicketValidatedEvent struct {
	ReservationID int64     `json:"reservation_id"`
	TicketCode    string    `json:"ticket_code"`
	OperatorID    int64     `json:"operator_id"`
	Timestamp     time.Time `json:"timestamp"`
}
