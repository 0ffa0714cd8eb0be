package service

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapar/internal/apperrors"
	"sapar/internal/models"
	"sapar/internal/repository"
)

func TestCreateReservation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A", "1B"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReservationPending, resp.Status)
	assert.Equal(t, int64(6000), resp.TotalCents)
	assert.Equal(t, []string{"1A", "1B"}, resp.Seats)
	assert.NotEmpty(t, resp.TicketCode)
	assert.Equal(t, 1, f.events.published(models.EventReservationCreated))

	avail, err := f.services.Trips.AvailableSeats(ctx, f.tripID)
	require.NoError(t, err)
	assert.Equal(t, []string{"2A", "2B"}, avail.Seats)
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  nil,
	})
	assert.ErrorIs(t, err, apperrors.ErrNoSeatsRequested)

	_, err = f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A", "1A"},
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSeats)

	_, err = f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"9Z"},
	})
	assert.ErrorIs(t, err, apperrors.ErrUnknownSeat)

	_, err = f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID + 1000,
		Seats:  []string{"1A"},
	})
	assert.ErrorIs(t, err, apperrors.ErrTripNotFound)
}

func TestCreateReservationClosedTrip(t *testing.T) {
	f := newFixture()
	f.mem.SetTripStatus(f.tripID, models.TripClosed)

	_, err := f.services.Reservations.Create(context.Background(), f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	assert.ErrorIs(t, err, apperrors.ErrTripNotOpen)
}

func TestCreateReservationSeatConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	require.NoError(t, err)

	// Overlapping request fails whole, including the free seat 1B.
	_, err = f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A", "1B"},
	})
	assert.ErrorIs(t, err, apperrors.ErrSeatConflict)

	avail, err := f.services.Trips.AvailableSeats(ctx, f.tripID)
	require.NoError(t, err)
	assert.Contains(t, avail.Seats, "1B")
}

// Many riders race for the same seat; exactly one wins.
func TestCreateReservationNoDoubleSale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const riders = 20
	riderIDs := make([]int64, riders)
	for i := range riderIDs {
		riderIDs[i] = f.mem.AddUser(fmt.Sprintf("rider%d@test", i), "hash", "Rider", models.RoleRider, true)
	}

	var wg sync.WaitGroup
	results := make([]error, riders)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.services.Reservations.Create(ctx, riderIDs[i], &models.CreateReservationRequest{
				TripID: f.tripID,
				Seats:  []string{"2B"},
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range results {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrSeatConflict)
		}
	}
	assert.Equal(t, 1, won)
}

// The total is fixed at creation; a later trip price change must not
// leak into an existing reservation or its settlement.
func TestReservationPriceIsFixedAtCreation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	require.NoError(t, err)
	require.Equal(t, int64(3000), resp.TotalCents)

	f.mem.SetTripPrice(f.tripID, 2000)

	settle, err := f.services.Payments.Settle(ctx, f.riderID, &models.SettlePaymentRequest{
		ReservationID: resp.ID,
		Method:        "card",
		AmountCents:   3000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, settle.Result)
	assert.Equal(t, models.ReservationConfirmed, settle.ReservationStatus)
}

func TestExpiredHoldFreesSeatWithoutSweep(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	require.NoError(t, err)

	f.advance(testExpiry + time.Second)

	// No sweeper ran; availability is derived from reservation age.
	avail, err := f.services.Trips.AvailableSeats(ctx, f.tripID)
	require.NoError(t, err)
	assert.Contains(t, avail.Seats, "1A")

	otherRider := f.mem.AddUser("other@test", "hash", "Other", models.RoleRider, true)
	_, err = f.services.Reservations.Create(ctx, otherRider, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	assert.NoError(t, err)
}

func TestConfirmedHoldNeverExpires(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	require.NoError(t, err)

	_, err = f.services.Payments.Settle(ctx, f.riderID, &models.SettlePaymentRequest{
		ReservationID: resp.ID,
		Method:        "card",
		AmountCents:   resp.TotalCents,
	})
	require.NoError(t, err)

	f.advance(48 * time.Hour)

	avail, err := f.services.Trips.AvailableSeats(ctx, f.tripID)
	require.NoError(t, err)
	assert.NotContains(t, avail.Seats, "1A")
}

func TestListByRider(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.services.Reservations.Create(ctx, f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"2A"},
	})
	require.NoError(t, err)

	other := f.mem.AddUser("other@test", "hash", "Other", models.RoleRider, true)

	list, err := f.services.Reservations.ListByRider(ctx, f.riderID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)
	assert.Equal(t, []string{"2A"}, list[0].Seats)

	list, err = f.services.Reservations.ListByRider(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTicketCodeFormat(t *testing.T) {
	code := newTicketCode(testStart)
	assert.Regexp(t, regexp.MustCompile(`^SPR-\d+-[0-9a-f]{12}$`), code)

	// Codes from the same instant still differ.
	assert.NotEqual(t, code, newTicketCode(testStart))
}

func TestTicketCodeRetryExhausted(t *testing.T) {
	f := newFixture()

	// A store that always reports a code collision makes creation fail
	// after the retry budget instead of looping forever.
	stores := f.mem.Stores()
	svc := &ReservationService{
		trips:        stores.Trips,
		seats:        stores.Seats,
		reservations: collidingStore{stores.Reservations},
		events:       NopPublisher{},
		expiry:       testExpiry,
		now:          f.clock,
	}

	_, err := svc.Create(context.Background(), f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  []string{"1A"},
	})
	assert.ErrorIs(t, err, apperrors.ErrTicketCodeTaken)
}

type collidingStore struct {
	repository.ReservationStore
}

func (collidingStore) CreateWithClaims(context.Context, *models.Reservation, []int64, time.Time) error {
	return apperrors.ErrTicketCodeTaken
}
