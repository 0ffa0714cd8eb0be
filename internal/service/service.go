package service

import (
	"time"

	"sapar/internal/repository"
)

// EventPublisher is the slice of the NATS client the services need.
// A nil-safe no-op implementation stands in when messaging is disabled.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(string, interface{}) error { return nil }

type Services struct {
	Trips        *TripService
	Reservations *ReservationService
	Payments     *PaymentService
	Tickets      *TicketService
	Users        *UserService
}

// NewServices wires the service layer. expiry is the reservation expiry
// window; every derived-availability read and every settlement check
// uses it through the same cutoff arithmetic.
func NewServices(stores *repository.Stores, events EventPublisher, expiry time.Duration) *Services {
	if events == nil {
		events = NopPublisher{}
	}
	now := time.Now

	return &Services{
		Trips:        &TripService{trips: stores.Trips, reservations: stores.Reservations, expiry: expiry, now: now},
		Reservations: &ReservationService{trips: stores.Trips, seats: stores.Seats, reservations: stores.Reservations, events: events, expiry: expiry, now: now},
		Payments:     &PaymentService{reservations: stores.Reservations, events: events, expiry: expiry, now: now},
		Tickets:      &TicketService{reservations: stores.Reservations, users: stores.Users, events: events, now: now},
		Users:        &UserService{users: stores.Users},
	}
}

// SetClock replaces the wall clock on every service. Test hook.
func (s *Services) SetClock(now func() time.Time) {
	s.Trips.now = now
	s.Reservations.now = now
	s.Payments.now = now
	s.Tickets.now = now
}
