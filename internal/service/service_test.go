package service

import (
	"sync"
	"time"

	"sapar/internal/models"
	"sapar/internal/repository"
)

// Shared test fixtures: a memory-backed engine with one open trip on a
// four-seat bus and a controllable clock.

const testExpiry = 15 * time.Minute

var testStart = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

type fixture struct {
	mem      *repository.MemoryStore
	services *Services
	events   *capturePublisher
	riderID  int64
	tripID   int64

	mu  sync.Mutex
	now time.Time
}

func newFixture() *fixture {
	mem := repository.NewMemoryStore()
	events := &capturePublisher{}

	f := &fixture{mem: mem, events: events, now: testStart}

	f.riderID = mem.AddUser("rider@test", "hash", "Rider", models.RoleRider, true)
	routeID := mem.AddRoute("Almaty", "Astana")
	vehicleID := mem.AddVehicle("KZ001", "Yutong", []string{"1A", "1B", "2A", "2B"})
	f.tripID = mem.AddTrip(routeID, vehicleID,
		testStart.Add(24*time.Hour), testStart.Add(40*time.Hour), 3000, models.TripOpen)

	f.services = NewServices(mem.Stores(), events, testExpiry)
	f.services.SetClock(f.clock)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *capturePublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *capturePublisher) published(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}
