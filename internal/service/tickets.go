package service

import (
	"context"
	"fmt"
	"time"

	"sapar/internal/apperrors"
	"sapar/internal/logger"
	"sapar/internal/metrics"
	"sapar/internal/models"
	"sapar/internal/repository"
)

// TicketService handles one-shot check-in of confirmed tickets.
type TicketService struct {
	reservations repository.ReservationStore
	users        repository.UserStore
	events       EventPublisher
	now          func() time.Time
}

// Validate checks a ticket in. Only operator-class users may call it,
// only CONFIRMED reservations pass, and a ticket validates exactly once.
func (s *TicketService) Validate(ctx context.Context, operatorID int64, ticketCode string) (*models.TicketValidation, error) {
	operator, err := s.users.GetByID(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get operator: %w", err)
	}
	if operator == nil || !operator.IsOperator() {
		return nil, apperrors.ErrNotAuthorized
	}

	validation, err := s.reservations.Validate(ctx, ticketCode, operatorID)
	if err != nil {
		return nil, err
	}

	metrics.TicketsValidated.Inc()

	event := models.TicketValidatedEvent{
		ReservationID: validation.ReservationID,
		TicketCode:    ticketCode,
		OperatorID:    operatorID,
		Timestamp:     validation.ValidatedAt,
	}
	if err := s.events.Publish(models.EventTicketValidated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket validated event",
			"error", err,
			"reservation_id", validation.ReservationID,
			"event_type", models.EventTicketValidated)
	}

	return validation, nil
}
