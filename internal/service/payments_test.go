package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapar/internal/apperrors"
	"sapar/internal/models"
)

func (f *fixture) reserve(t *testing.T, seats ...string) *models.CreateReservationResponse {
	t.Helper()
	resp, err := f.services.Reservations.Create(context.Background(), f.riderID, &models.CreateReservationRequest{
		TripID: f.tripID,
		Seats:  seats,
	})
	require.NoError(t, err)
	return resp
}

func TestSettleFullAmountConfirms(t *testing.T) {
	f := newFixture()
	res := f.reserve(t, "1A", "1B")

	resp, err := f.services.Payments.Settle(context.Background(), f.riderID, &models.SettlePaymentRequest{
		ReservationID: res.ID,
		Method:        "card",
		AmountCents:   res.TotalCents,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, resp.Result)
	assert.Equal(t, models.ReservationConfirmed, resp.ReservationStatus)
	assert.Equal(t, 1, f.events.published(models.EventReservationConfirmed))
}

func TestSettleShortAmountCancels(t *testing.T) {
	f := newFixture()
	res := f.reserve(t, "1A")

	resp, err := f.services.Payments.Settle(context.Background(), f.riderID, &models.SettlePaymentRequest{
		ReservationID: res.ID,
		Method:        "card",
		AmountCents:   res.TotalCents - 1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentFailed, resp.Result)
	assert.Equal(t, models.ReservationCancelled, resp.ReservationStatus)
	assert.Equal(t, 1, f.events.published(models.EventReservationCancelled))

	// A failed settlement is terminal and releases the seats.
	avail, err := f.services.Trips.AvailableSeats(context.Background(), f.tripID)
	require.NoError(t, err)
	assert.Contains(t, avail.Seats, "1A")
}

func TestSettleTwiceRejected(t *testing.T) {
	f := newFixture()
	res := f.reserve(t, "1A")
	ctx := context.Background()

	req := &models.SettlePaymentRequest{
		ReservationID: res.ID,
		Method:        "card",
		AmountCents:   res.TotalCents,
	}
	_, err := f.services.Payments.Settle(ctx, f.riderID, req)
	require.NoError(t, err)

	_, err = f.services.Payments.Settle(ctx, f.riderID, req)
	assert.ErrorIs(t, err, apperrors.ErrReservationNotPending)
}

func TestSettleExpiredReservationRejected(t *testing.T) {
	f := newFixture()
	res := f.reserve(t, "1A")

	// Past the window the seats are derivably back on the market, so a
	// late payment must not confirm the reservation.
	f.advance(testExpiry + time.Minute)

	_, err := f.services.Payments.Settle(context.Background(), f.riderID, &models.SettlePaymentRequest{
		ReservationID: res.ID,
		Method:        "card",
		AmountCents:   res.TotalCents,
	})
	assert.ErrorIs(t, err, apperrors.ErrReservationNotPending)
}

func TestSettleForeignReservationRejected(t *testing.T) {
	f := newFixture()
	res := f.reserve(t, "1A")

	stranger := f.mem.AddUser("stranger@test", "hash", "Stranger", models.RoleRider, true)
	_, err := f.services.Payments.Settle(context.Background(), stranger, &models.SettlePaymentRequest{
		ReservationID: res.ID,
		Method:        "card",
		AmountCents:   res.TotalCents,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}

func TestSettleUnknownReservation(t *testing.T) {
	f := newFixture()

	_, err := f.services.Payments.Settle(context.Background(), f.riderID, &models.SettlePaymentRequest{
		ReservationID: 424242,
		Method:        "card",
		AmountCents:   100,
	})
	assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
}
