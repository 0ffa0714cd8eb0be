package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sapar/internal/models"
	"sapar/internal/repository"
	"sapar/internal/service"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func TestSweepCancelsOnlyOverduePending(t *testing.T) {
	mem := repository.NewMemoryStore()
	stores := mem.Stores()
	ctx := context.Background()

	rider := mem.AddUser("rider@test", "hash", "Rider", models.RoleRider, true)
	routeID := mem.AddRoute("Almaty", "Astana")
	vehicleID := mem.AddVehicle("KZ001", "Yutong", []string{"1A", "1B", "2A"})
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	tripID := mem.AddTrip(routeID, vehicleID, now.Add(24*time.Hour), now.Add(30*time.Hour), 1000, models.TripOpen)

	expiry := 15 * time.Minute
	makeReservation := func(createdAt time.Time, seatID int64, code string) int64 {
		res := &models.Reservation{
			RiderID:    rider,
			TripID:     tripID,
			TicketCode: code,
			CreatedAt:  createdAt,
		}
		require.NoError(t, stores.Reservations.CreateWithClaims(ctx, res, []int64{seatID}, createdAt.Add(-expiry)))
		return res.ID
	}

	seats, err := stores.Seats.ListByVehicle(ctx, vehicleID)
	require.NoError(t, err)
	require.Len(t, seats, 3)

	overdue := makeReservation(now.Add(-time.Hour), seats[0].ID, "SPR-1-aaaaaaaaaaaa")
	fresh := makeReservation(now.Add(-time.Minute), seats[1].ID, "SPR-2-bbbbbbbbbbbb")

	confirmed := makeReservation(now.Add(-2*time.Hour), seats[2].ID, "SPR-3-cccccccccccc")
	_, _, err = stores.Reservations.Settle(ctx, confirmed, "card", 1000, now.Add(-3*time.Hour))
	require.NoError(t, err)

	events := &recordingPublisher{}
	sweeper := NewExpirySweeper(stores.Reservations, events, expiry, time.Minute)
	sweeper.now = func() time.Time { return now }

	assert.Equal(t, int64(1), sweeper.Sweep(ctx))

	get := func(id int64) string {
		res, err := stores.Reservations.GetByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, res)
		return res.Status
	}
	assert.Equal(t, models.ReservationCancelled, get(overdue))
	assert.Equal(t, models.ReservationPending, get(fresh))
	assert.Equal(t, models.ReservationConfirmed, get(confirmed))

	assert.Equal(t, []string{models.EventReservationExpired}, events.subjects)

	// Idempotent: the next pass finds nothing and publishes nothing.
	assert.Equal(t, int64(0), sweeper.Sweep(ctx))
	assert.Len(t, events.subjects, 1)
}

func TestSweeperStartStop(t *testing.T) {
	mem := repository.NewMemoryStore()
	sweeper := NewExpirySweeper(mem.Stores().Reservations, nil, 15*time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	mem := repository.NewMemoryStore()
	sweeper := NewExpirySweeper(mem.Stores().Reservations, service.NopPublisher{}, 15*time.Minute, time.Minute)
	sweeper.Stop()
}
