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

// PaymentService settles reservations. There is no payment gateway;
// settlement is driven by the amount the caller presents.
type PaymentService struct {
	reservations repository.ReservationStore
	events       EventPublisher
	expiry       time.Duration
	now          func() time.Time
}

// Settle records one payment attempt and moves the reservation to its
// terminal state: CONFIRMED when the amount covers the total, CANCELLED
// otherwise. Only the reservation's own rider may settle it. A PENDING
// reservation already past the expiry window is refused, its seats are
// back on the market.
func (s *PaymentService) Settle(ctx context.Context, riderID int64, req *models.SettlePaymentRequest) (*models.SettlePaymentResponse, error) {
	res, err := s.reservations.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, apperrors.ErrReservationNotFound
	}
	if res.RiderID != riderID {
		return nil, apperrors.ErrNotAuthorized
	}

	activeSince := s.now().Add(-s.expiry)
	payment, status, err := s.reservations.Settle(ctx, req.ReservationID, req.Method, req.AmountCents, activeSince)
	if err != nil {
		return nil, err
	}

	metrics.Settlements.WithLabelValues(payment.Result).Inc()

	subject := models.EventReservationCancelled
	if status == models.ReservationConfirmed {
		subject = models.EventReservationConfirmed
	}
	event := models.ReservationSettledEvent{
		ReservationID: res.ID,
		TripID:        res.TripID,
		PaymentID:     payment.ID,
		Result:        payment.Result,
		Status:        status,
		Timestamp:     payment.SettledAt,
	}
	if err := s.events.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish settlement event",
			"error", err,
			"reservation_id", res.ID,
			"event_type", subject)
	}

	return &models.SettlePaymentResponse{
		PaymentID:         payment.ID,
		Result:            payment.Result,
		ReservationStatus: status,
	}, nil
}
