package jobs

import (
	"context"
	"sync"
	"time"

	"sapar/internal/logger"
	"sapar/internal/metrics"
	"sapar/internal/models"
	"sapar/internal/repository"
	"sapar/internal/service"
)

// ExpirySweeper periodically cancels PENDING reservations older than the
// expiry window. Availability does not depend on it, reads derive seat
// state from reservation age on their own. The sweeper only makes the
// expiry durable: it flips overdue rows to CANCELLED so history queries
// and downstream consumers see the terminal state.
//
// The batch update is idempotent, so overlapping sweepers in several
// processes are harmless.
type ExpirySweeper struct {
	reservations repository.ReservationStore
	events       service.EventPublisher
	expiry       time.Duration
	interval     time.Duration
	now          func() time.Time

	started  bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewExpirySweeper(reservations repository.ReservationStore, events service.EventPublisher, expiry, interval time.Duration) *ExpirySweeper {
	if events == nil {
		events = service.NopPublisher{}
	}
	return &ExpirySweeper{
		reservations: reservations,
		events:       events,
		expiry:       expiry,
		interval:     interval,
		now:          time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.started = true
	go s.run(ctx)
}

func (s *ExpirySweeper) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one reclaim pass and returns the number of
// reservations it cancelled.
func (s *ExpirySweeper) Sweep(ctx context.Context) int64 {
	cutoff := s.now().Add(-s.expiry)

	cancelled, err := s.reservations.CancelExpired(ctx, cutoff)
	if err != nil {
		logger.Get().Error("Expiry sweep failed", "error", err)
		return 0
	}
	if cancelled == 0 {
		return 0
	}

	metrics.ReservationsExpired.Add(float64(cancelled))
	logger.Get().Info("Expired pending reservations cancelled",
		"cancelled", cancelled,
		"cutoff", cutoff)

	event := models.ReservationsExpiredEvent{
		Cancelled: cancelled,
		Cutoff:    cutoff,
		Timestamp: s.now(),
	}
	if err := s.events.Publish(models.EventReservationExpired, event); err != nil {
		logger.Get().Error("Failed to publish expiry event", "error", err)
	}

	return cancelled
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (s *ExpirySweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.started {
		<-s.done
	}
}
