package models

import (
	"time"
)

// Reservation lifecycle. PENDING is the only non-terminal state.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Trip status. Only OPEN trips accept new reservations.
const (
	TripOpen   = "OPEN"
	TripClosed = "CLOSED"
)

// Payment attempt outcome.
const (
	PaymentPaid   = "PAID"
	PaymentFailed = "FAILED"
)

// User roles. Ticket validation requires an operator-class role.
const (
	RoleRider    = "RIDER"
	RoleOperator = "OPERATOR"
	RoleAdmin    = "ADMIN"
)

// User represents a user in the system
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FullName     string    `json:"full_name" db:"full_name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsOperator reports whether the user may validate tickets.
func (u *User) IsOperator() bool {
	return u.Role == RoleOperator || u.Role == RoleAdmin
}

// Route represents a serviced origin-destination pair
type Route struct {
	ID          int64  `json:"id" db:"id"`
	Origin      string `json:"origin" db:"origin"`
	Destination string `json:"destination" db:"destination"`
}

// Vehicle represents a registered bus
type Vehicle struct {
	ID          int64  `json:"id" db:"id"`
	PlateNumber string `json:"plate_number" db:"plate_number"`
	Model       string `json:"model" db:"model"`
	SeatCount   int    `json:"seat_count" db:"seat_count"`
}

// Seat belongs to exactly one vehicle; the label is unique within the
// vehicle. Seats are created when the vehicle is registered and never
// change afterwards.
type Seat struct {
	ID        int64     `json:"id" db:"id"`
	VehicleID int64     `json:"vehicle_id" db:"vehicle_id"`
	Label     string    `json:"label" db:"label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Trip represents a scheduled departure of a vehicle over a route
type Trip struct {
	ID         int64     `json:"id" db:"id"`
	RouteID    int64     `json:"route_id" db:"route_id"`
	VehicleID  int64     `json:"vehicle_id" db:"vehicle_id"`
	TravelDate time.Time `json:"travel_date" db:"travel_date"`
	DepartsAt  time.Time `json:"departs_at" db:"departs_at"`
	ArrivesAt  time.Time `json:"arrives_at" db:"arrives_at"`
	PriceCents int64     `json:"price_cents" db:"price_cents"`
	Status     string    `json:"status" db:"status"`
}

// TripDetail is a trip joined with its route, for catalog listings.
type TripDetail struct {
	Trip
	Origin      string `json:"origin" db:"origin"`
	Destination string `json:"destination" db:"destination"`
}

// Reservation represents a booking of one or more seats on a trip.
// TotalCents is fixed at creation time (trip price x seat count) and
// never recomputed. Reservations are kept forever; nothing deletes one.
type Reservation struct {
	ID         int64     `json:"id" db:"id"`
	RiderID    int64     `json:"rider_id" db:"rider_id"`
	TripID     int64     `json:"trip_id" db:"trip_id"`
	Status     string    `json:"status" db:"status"`
	TotalCents int64     `json:"total_cents" db:"total_cents"`
	TicketCode string    `json:"ticket_code" db:"ticket_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	Seats      []Seat    `json:"seats,omitempty"` // Not from DB, filled separately
}

// ReservationSeat binds a reservation to a specific seat on a trip.
// The claim is active while the reservation is CONFIRMED, or PENDING
// and younger than the expiry window.
type ReservationSeat struct {
	ID            int64     `json:"id" db:"id"`
	ReservationID int64     `json:"reservation_id" db:"reservation_id"`
	TripID        int64     `json:"trip_id" db:"trip_id"`
	SeatID        int64     `json:"seat_id" db:"seat_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Payment records a single settlement attempt against a reservation.
// A reservation may accumulate several attempts but at most one PAID.
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	ReservationID int64     `json:"reservation_id" db:"reservation_id"`
	Method        string    `json:"method" db:"method"`
	AmountCents   int64     `json:"amount_cents" db:"amount_cents"`
	Result        string    `json:"result" db:"result"`
	SettledAt     time.Time `json:"settled_at" db:"settled_at"`
}

// TicketValidation records that a reservation's ticket was checked in.
// At most one row exists per reservation; its existence makes any
// further validation fail.
type TicketValidation struct {
	ID            int64     `json:"id" db:"id"`
	ReservationID int64     `json:"reservation_id" db:"reservation_id"`
	OperatorID    int64     `json:"operator_id" db:"operator_id"`
	ValidatedAt   time.Time `json:"validated_at" db:"validated_at"`
}
