package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"sapar/internal/apperrors"
	"sapar/internal/logger"
	"sapar/internal/metrics"
	"sapar/internal/models"
	"sapar/internal/repository"
)

// ticketCodeAttempts bounds regeneration on a ticket code collision.
const ticketCodeAttempts = 3

// ReservationService creates reservations and serves a rider's booking
// history.
type ReservationService struct {
	trips        repository.TripStore
	seats        repository.SeatStore
	reservations repository.ReservationStore
	events       EventPublisher
	expiry       time.Duration
	now          func() time.Time
}

// Create books the requested seats for the rider. The price is fixed
// here, at creation time, as trip price times seat count; later trip
// price changes never touch an existing reservation. All-or-nothing: if
// any requested seat is unavailable, nothing is written.
func (s *ReservationService) Create(ctx context.Context, riderID int64, req *models.CreateReservationRequest) (*models.CreateReservationResponse, error) {
	if len(req.Seats) == 0 {
		return nil, apperrors.ErrNoSeatsRequested
	}
	seen := make(map[string]bool, len(req.Seats))
	for _, label := range req.Seats {
		if seen[label] {
			return nil, apperrors.ErrDuplicateSeats
		}
		seen[label] = true
	}

	trip, err := s.trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip == nil {
		return nil, apperrors.ErrTripNotFound
	}
	if trip.Status != models.TripOpen {
		return nil, apperrors.ErrTripNotOpen
	}

	seats, err := s.seats.ResolveLabels(ctx, trip.VehicleID, req.Seats)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seats: %w", err)
	}
	if len(seats) != len(req.Seats) {
		return nil, apperrors.ErrUnknownSeat
	}

	seatIDs := make([]int64, len(seats))
	for i, seat := range seats {
		seatIDs[i] = seat.ID
	}

	now := s.now()
	res := &models.Reservation{
		RiderID:    riderID,
		TripID:     req.TripID,
		Status:     models.ReservationPending,
		TotalCents: trip.PriceCents * int64(len(seats)),
		CreatedAt:  now,
	}

	// A ticket code collision is vanishingly rare but recoverable:
	// regenerate and retry. Seat conflicts are not retried, the seat is
	// genuinely taken.
	activeSince := now.Add(-s.expiry)
	for attempt := 0; ; attempt++ {
		res.TicketCode = newTicketCode(now)
		err = s.reservations.CreateWithClaims(ctx, res, seatIDs, activeSince)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrTicketCodeTaken) && attempt+1 < ticketCodeAttempts {
			continue
		}
		if errors.Is(err, apperrors.ErrSeatConflict) {
			metrics.SeatConflicts.Inc()
		}
		return nil, err
	}

	metrics.ReservationsCreated.Inc()

	event := models.ReservationCreatedEvent{
		ReservationID: res.ID,
		TripID:        res.TripID,
		RiderID:       riderID,
		SeatCount:     len(seats),
		TotalCents:    res.TotalCents,
		Timestamp:     now,
	}
	if err := s.events.Publish(models.EventReservationCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish reservation created event",
			"error", err,
			"reservation_id", res.ID,
			"event_type", models.EventReservationCreated)
	}

	labels := make([]string, len(seats))
	for i, seat := range seats {
		labels[i] = seat.Label
	}
	sort.Strings(labels)

	return &models.CreateReservationResponse{
		ID:         res.ID,
		TicketCode: res.TicketCode,
		TotalCents: res.TotalCents,
		Status:     res.Status,
		Seats:      labels,
	}, nil
}

func (s *ReservationService) ListByRider(ctx context.Context, riderID int64) ([]models.ListReservationsResponseItem, error) {
	reservations, err := s.reservations.ListByRider(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	result := make([]models.ListReservationsResponseItem, len(reservations))
	for i, res := range reservations {
		seats, err := s.reservations.GetSeats(ctx, res.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to get reservation seats: %w", err)
		}
		labels := make([]string, len(seats))
		for j, seat := range seats {
			labels[j] = seat.Label
		}
		result[i] = models.ListReservationsResponseItem{
			ID:         res.ID,
			TripID:     res.TripID,
			Status:     res.Status,
			TotalCents: res.TotalCents,
			TicketCode: res.TicketCode,
			Seats:      labels,
		}
	}
	return result, nil
}

// newTicketCode builds an opaque code like SPR-1756339200-9f86d081b2c4.
func newTicketCode(now time.Time) string {
	var buf [6]byte
	rand.Read(buf[:])
	return fmt.Sprintf("SPR-%d-%s", now.Unix(), hex.EncodeToString(buf[:]))
}
