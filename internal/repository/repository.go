// Package repository holds the storage layer of the booking engine.
//
// Services depend on the narrow store interfaces below, never on a
// concrete database, so the engine runs identically against Postgres in
// production and against the in-memory store in tests. Every multi-step
// mutation is a single transaction inside the store; nothing partial is
// ever visible to a concurrent caller.
//
// Seat exclusivity is enforced here, not in the service layer: multiple
// server processes may run the booking transaction concurrently with no
// shared memory, so a read-then-write check without a backing row lock
// would be a race.
package repository

import (
	"context"
	"time"

	"sapar/internal/database"
	"sapar/internal/models"
)

// TripStore reads the trip catalog.
type TripStore interface {
	// GetByID returns nil, nil when the trip does not exist.
	GetByID(ctx context.Context, id int64) (*models.Trip, error)
	List(ctx context.Context) ([]models.TripDetail, error)
}

// SeatStore reads the immutable seat layout of vehicles.
type SeatStore interface {
	// ResolveLabels returns the seats of the vehicle matching the given
	// labels. Labels that do not resolve are simply absent from the
	// result; the caller compares counts.
	ResolveLabels(ctx context.Context, vehicleID int64, labels []string) ([]models.Seat, error)
	ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error)
}

// ReservationStore owns reservations, seat claims, payments and ticket
// validations. activeSince is the expiry cutoff computed by the caller:
// a PENDING reservation created at or before it no longer holds its
// seats. Passing the cutoff in keeps every read purely derived from
// reservation state and the wall clock, with no materialized
// availability to drift out of sync.
type ReservationStore interface {
	// CreateWithClaims atomically verifies the trip is OPEN, checks that
	// none of the seats has an active claim on the trip, and inserts the
	// reservation plus its claims. It fills ID, CreatedAt and UpdatedAt
	// on res. Fails with ErrTripNotOpen, ErrSeatConflict, or
	// ErrTicketCodeTaken (retryable by regenerating the code).
	CreateWithClaims(ctx context.Context, res *models.Reservation, seatIDs []int64, activeSince time.Time) error

	// AvailableSeats returns the seats of the trip's vehicle with no
	// active claim, ordered by label. Read-only; takes no locks.
	AvailableSeats(ctx context.Context, tripID int64, activeSince time.Time) ([]models.Seat, error)

	// GetByID returns nil, nil when the reservation does not exist.
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	GetSeats(ctx context.Context, reservationID int64) ([]models.Seat, error)
	ListByRider(ctx context.Context, riderID int64) ([]models.Reservation, error)

	// Settle atomically re-checks that the reservation is PENDING and
	// not yet past the expiry cutoff, records the payment attempt, and
	// flips the reservation to CONFIRMED (amount covers the total) or
	// CANCELLED. Returns the payment and the resulting status.
	Settle(ctx context.Context, reservationID int64, method string, amountCents int64, activeSince time.Time) (*models.Payment, string, error)

	// CancelExpired transitions every PENDING reservation created before
	// the cutoff to CANCELLED in one batch update and reports how many
	// rows changed. Idempotent.
	CancelExpired(ctx context.Context, cutoff time.Time) (int64, error)

	// Validate atomically records the one-time check-in of a confirmed
	// reservation's ticket. Fails with ErrTicketNotFound,
	// ErrTicketNotConfirmed or ErrAlreadyValidated.
	Validate(ctx context.Context, ticketCode string, operatorID int64) (*models.TicketValidation, error)
}

// UserStore reads and creates user accounts.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Stores bundles the store implementations handed to the services.
type Stores struct {
	Trips        TripStore
	Seats        SeatStore
	Reservations ReservationStore
	Users        UserStore
}

// NewStores wires the Postgres implementations over one connection pool.
func NewStores(db *database.DB) *Stores {
	return &Stores{
		Trips:        NewTripRepository(db),
		Seats:        NewSeatRepository(db),
		Reservations: NewReservationRepository(db),
		Users:        NewUserRepository(db),
	}
}
