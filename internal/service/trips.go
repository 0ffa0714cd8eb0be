package service

import (
	"context"
	"fmt"
	"time"

	"sapar/internal/apperrors"
	"sapar/internal/models"
	"sapar/internal/repository"
)

// TripService serves the trip catalog and the derived availability view.
type TripService struct {
	trips        repository.TripStore
	reservations repository.ReservationStore
	expiry       time.Duration
	now          func() time.Time
}

func (s *TripService) List(ctx context.Context) ([]models.ListTripsResponseItem, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	result := make([]models.ListTripsResponseItem, len(trips))
	for i, trip := range trips {
		result[i] = models.ListTripsResponseItem{
			ID:          trip.ID,
			Origin:      trip.Origin,
			Destination: trip.Destination,
			TravelDate:  trip.TravelDate.Format("2006-01-02"),
			DepartsAt:   trip.DepartsAt.Format(time.RFC3339),
			ArrivesAt:   trip.ArrivesAt.Format(time.RFC3339),
			PriceCents:  trip.PriceCents,
			Status:      trip.Status,
		}
	}
	return result, nil
}

func (s *TripService) Get(ctx context.Context, id int64) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip == nil {
		return nil, apperrors.ErrTripNotFound
	}
	return trip, nil
}

// AvailableSeats returns the labels of seats with no active claim on the
// trip. Availability is computed from reservation state at call time, so
// a seat held by a reservation that just crossed the expiry window shows
// up here without any background job having run.
func (s *TripService) AvailableSeats(ctx context.Context, tripID int64) (*models.AvailableSeatsResponse, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip == nil {
		return nil, apperrors.ErrTripNotFound
	}

	activeSince := s.now().Add(-s.expiry)
	seats, err := s.reservations.AvailableSeats(ctx, tripID, activeSince)
	if err != nil {
		return nil, fmt.Errorf("failed to compute available seats: %w", err)
	}

	labels := make([]string, len(seats))
	for i, seat := range seats {
		labels[i] = seat.Label
	}
	return &models.AvailableSeatsResponse{TripID: tripID, Seats: labels}, nil
}
