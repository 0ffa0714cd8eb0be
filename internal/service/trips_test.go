package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapar/internal/apperrors"
)

func TestListTrips(t *testing.T) {
	f := newFixture()

	trips, err := f.services.Trips.List(context.Background())
	require.NoError(t, err)
	require.Len(t, trips, 1)

	assert.Equal(t, f.tripID, trips[0].ID)
	assert.Equal(t, "Almaty", trips[0].Origin)
	assert.Equal(t, "Astana", trips[0].Destination)
	assert.Equal(t, int64(3000), trips[0].PriceCents)
}

func TestGetTripNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.services.Trips.Get(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
}

func TestAvailableSeatsFreshTrip(t *testing.T) {
	f := newFixture()

	avail, err := f.services.Trips.AvailableSeats(context.Background(), f.tripID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "1B", "2A", "2B"}, avail.Seats)
}

func TestAvailableSeatsUnknownTrip(t *testing.T) {
	f := newFixture()

	_, err := f.services.Trips.AvailableSeats(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
}
