package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapar/internal/apperrors"
	"sapar/internal/models"
)

func (f *fixture) confirmedTicket(t *testing.T) string {
	t.Helper()
	res := f.reserve(t, "1A")
	_, err := f.services.Payments.Settle(context.Background(), f.riderID, &models.SettlePaymentRequest{
		ReservationID: res.ID,
		Method:        "card",
		AmountCents:   res.TotalCents,
	})
	require.NoError(t, err)
	return res.TicketCode
}

func TestValidateTicketOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	operator := f.mem.AddUser("op@test", "hash", "Operator", models.RoleOperator, true)
	code := f.confirmedTicket(t)

	validation, err := f.services.Tickets.Validate(ctx, operator, code)
	require.NoError(t, err)
	assert.Equal(t, operator, validation.OperatorID)
	assert.Equal(t, 1, f.events.published(models.EventTicketValidated))

	// Second check-in of the same ticket must fail, also for another
	// operator.
	_, err = f.services.Tickets.Validate(ctx, operator, code)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyValidated)

	other := f.mem.AddUser("op2@test", "hash", "Operator 2", models.RoleOperator, true)
	_, err = f.services.Tickets.Validate(ctx, other, code)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyValidated)
}

func TestValidateRequiresOperatorRole(t *testing.T) {
	f := newFixture()
	code := f.confirmedTicket(t)

	_, err := f.services.Tickets.Validate(context.Background(), f.riderID, code)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthorized)
}

func TestValidateAdminAllowed(t *testing.T) {
	f := newFixture()
	admin := f.mem.AddUser("admin@test", "hash", "Admin", models.RoleAdmin, true)
	code := f.confirmedTicket(t)

	_, err := f.services.Tickets.Validate(context.Background(), admin, code)
	assert.NoError(t, err)
}

func TestValidatePendingTicketRejected(t *testing.T) {
	f := newFixture()
	operator := f.mem.AddUser("op@test", "hash", "Operator", models.RoleOperator, true)
	res := f.reserve(t, "1A")

	_, err := f.services.Tickets.Validate(context.Background(), operator, res.TicketCode)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotConfirmed)
}

func TestValidateUnknownTicket(t *testing.T) {
	f := newFixture()
	operator := f.mem.AddUser("op@test", "hash", "Operator", models.RoleOperator, true)

	_, err := f.services.Tickets.Validate(context.Background(), operator, "SPR-0-ffffffffffff")
	assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
}
