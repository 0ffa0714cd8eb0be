package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"sapar/internal/apperrors"
	"sapar/internal/models"
)

// MemoryStore backs every store interface with mutex-guarded maps. It
// mirrors the transactional semantics of the Postgres implementation,
// including the derived active-claim arithmetic, and exists so services,
// handlers and jobs can be tested without a database. It is an injected
// implementation like any other, not a fallback the data-access layer
// silently switches to.
//
// The interface methods are exposed through per-aggregate views (see
// Stores) because the stores intentionally share method names.
type MemoryStore struct {
	mu sync.Mutex

	users        map[int64]*models.User
	routes       map[int64]*models.Route
	vehicles     map[int64]*models.Vehicle
	seats        map[int64]*models.Seat
	trips        map[int64]*models.Trip
	reservations map[int64]*models.Reservation
	claims       []models.ReservationSeat
	payments     map[int64]*models.Payment
	validations  map[int64]*models.TicketValidation // keyed by reservation id
	ticketCodes  map[string]int64

	nextID int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*models.User),
		routes:       make(map[int64]*models.Route),
		vehicles:     make(map[int64]*models.Vehicle),
		seats:        make(map[int64]*models.Seat),
		trips:        make(map[int64]*models.Trip),
		reservations: make(map[int64]*models.Reservation),
		payments:     make(map[int64]*models.Payment),
		validations:  make(map[int64]*models.TicketValidation),
		ticketCodes:  make(map[string]int64),
	}
}

// Stores exposes the memory store behind the store interfaces.
func (m *MemoryStore) Stores() *Stores {
	return &Stores{
		Trips:        memoryTrips{m},
		Seats:        memorySeats{m},
		Reservations: memoryReservations{m},
		Users:        memoryUsers{m},
	}
}

type memoryTrips struct{ m *MemoryStore }
type memorySeats struct{ m *MemoryStore }
type memoryReservations struct{ m *MemoryStore }
type memoryUsers struct{ m *MemoryStore }

func (m *MemoryStore) nextSeq() int64 {
	m.nextID++
	return m.nextID
}

// claimActive reports whether a claim's owning reservation still holds
// its seat at the given cutoff. Callers hold the mutex.
func (m *MemoryStore) claimActive(claim models.ReservationSeat, activeSince time.Time) bool {
	res, ok := m.reservations[claim.ReservationID]
	if !ok {
		return false
	}
	switch res.Status {
	case models.ReservationConfirmed:
		return true
	case models.ReservationPending:
		return res.CreatedAt.After(activeSince)
	default:
		return false
	}
}

// TripStore

func (v memoryTrips) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	trip, ok := v.m.trips[id]
	if !ok {
		return nil, nil
	}
	copied := *trip
	return &copied, nil
}

func (v memoryTrips) List(ctx context.Context) ([]models.TripDetail, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	var trips []models.TripDetail
	for _, trip := range v.m.trips {
		detail := models.TripDetail{Trip: *trip}
		if route, ok := v.m.routes[trip.RouteID]; ok {
			detail.Origin = route.Origin
			detail.Destination = route.Destination
		}
		trips = append(trips, detail)
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].DepartsAt.Before(trips[j].DepartsAt) })
	return trips, nil
}

// SeatStore

func (v memorySeats) ResolveLabels(ctx context.Context, vehicleID int64, labels []string) ([]models.Seat, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	wanted := make(map[string]bool, len(labels))
	for _, label := range labels {
		wanted[label] = true
	}

	var seats []models.Seat
	for _, seat := range v.m.seats {
		if seat.VehicleID == vehicleID && wanted[seat.Label] {
			seats = append(seats, *seat)
		}
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].ID < seats[j].ID })
	return seats, nil
}

func (v memorySeats) ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	var seats []models.Seat
	for _, seat := range v.m.seats {
		if seat.VehicleID == vehicleID {
			seats = append(seats, *seat)
		}
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].Label < seats[j].Label })
	return seats, nil
}

// ReservationStore

func (v memoryReservations) CreateWithClaims(ctx context.Context, res *models.Reservation, seatIDs []int64, activeSince time.Time) error {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, ok := m.trips[res.TripID]
	if !ok || trip.Status != models.TripOpen {
		return apperrors.ErrTripNotOpen
	}

	if _, taken := m.ticketCodes[res.TicketCode]; taken {
		return apperrors.ErrTicketCodeTaken
	}

	requested := make(map[int64]bool, len(seatIDs))
	for _, id := range seatIDs {
		requested[id] = true
	}
	for _, claim := range m.claims {
		if claim.TripID == res.TripID && requested[claim.SeatID] && m.claimActive(claim, activeSince) {
			return apperrors.ErrSeatConflict
		}
	}

	res.ID = m.nextSeq()
	res.Status = models.ReservationPending
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	res.UpdatedAt = res.CreatedAt

	stored := *res
	stored.Seats = nil
	m.reservations[res.ID] = &stored
	m.ticketCodes[res.TicketCode] = res.ID

	for _, seatID := range seatIDs {
		m.claims = append(m.claims, models.ReservationSeat{
			ID:            m.nextSeq(),
			ReservationID: res.ID,
			TripID:        res.TripID,
			SeatID:        seatID,
			CreatedAt:     res.CreatedAt,
		})
	}
	return nil
}

func (v memoryReservations) AvailableSeats(ctx context.Context, tripID int64, activeSince time.Time) ([]models.Seat, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	trip, ok := m.trips[tripID]
	if !ok {
		return nil, nil
	}

	claimed := make(map[int64]bool)
	for _, claim := range m.claims {
		if claim.TripID == tripID && m.claimActive(claim, activeSince) {
			claimed[claim.SeatID] = true
		}
	}

	var seats []models.Seat
	for _, seat := range m.seats {
		if seat.VehicleID == trip.VehicleID && !claimed[seat.ID] {
			seats = append(seats, *seat)
		}
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].Label < seats[j].Label })
	return seats, nil
}

func (v memoryReservations) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	res, ok := v.m.reservations[id]
	if !ok {
		return nil, nil
	}
	copied := *res
	return &copied, nil
}

func (v memoryReservations) GetSeats(ctx context.Context, reservationID int64) ([]models.Seat, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	var seats []models.Seat
	for _, claim := range m.claims {
		if claim.ReservationID == reservationID {
			if seat, ok := m.seats[claim.SeatID]; ok {
				seats = append(seats, *seat)
			}
		}
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i].Label < seats[j].Label })
	return seats, nil
}

func (v memoryReservations) ListByRider(ctx context.Context, riderID int64) ([]models.Reservation, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	var reservations []models.Reservation
	for _, res := range v.m.reservations {
		if res.RiderID == riderID {
			reservations = append(reservations, *res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].CreatedAt.After(reservations[j].CreatedAt)
	})
	return reservations, nil
}

func (v memoryReservations) Settle(ctx context.Context, reservationID int64, method string, amountCents int64, activeSince time.Time) (*models.Payment, string, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[reservationID]
	if !ok {
		return nil, "", apperrors.ErrReservationNotPending
	}
	// A PENDING reservation past the cutoff has already lost its seats
	// to the derived availability view; settling it would resell them.
	if res.Status != models.ReservationPending || !res.CreatedAt.After(activeSince) {
		return nil, "", apperrors.ErrReservationNotPending
	}

	result := models.PaymentFailed
	newStatus := models.ReservationCancelled
	if amountCents >= res.TotalCents {
		result = models.PaymentPaid
		newStatus = models.ReservationConfirmed
	}

	payment := &models.Payment{
		ID:            m.nextSeq(),
		ReservationID: reservationID,
		Method:        method,
		AmountCents:   amountCents,
		Result:        result,
		SettledAt:     time.Now(),
	}
	m.payments[payment.ID] = payment

	res.Status = newStatus
	res.UpdatedAt = payment.SettledAt

	copied := *payment
	return &copied, newStatus, nil
}

func (v memoryReservations) CancelExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	var cancelled int64
	for _, res := range m.reservations {
		if res.Status == models.ReservationPending && !res.CreatedAt.After(cutoff) {
			res.Status = models.ReservationCancelled
			res.UpdatedAt = time.Now()
			cancelled++
		}
	}
	return cancelled, nil
}

func (v memoryReservations) Validate(ctx context.Context, ticketCode string, operatorID int64) (*models.TicketValidation, error) {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	reservationID, ok := m.ticketCodes[ticketCode]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	res := m.reservations[reservationID]
	if res.Status != models.ReservationConfirmed {
		return nil, apperrors.ErrTicketNotConfirmed
	}
	if _, exists := m.validations[reservationID]; exists {
		return nil, apperrors.ErrAlreadyValidated
	}

	validation := &models.TicketValidation{
		ID:            m.nextSeq(),
		ReservationID: reservationID,
		OperatorID:    operatorID,
		ValidatedAt:   time.Now(),
	}
	m.validations[reservationID] = validation

	copied := *validation
	return &copied, nil
}

// UserStore

func (v memoryUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	user, ok := v.m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (v memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	v.m.mu.Lock()
	defer v.m.mu.Unlock()

	for _, user := range v.m.users {
		if strings.EqualFold(user.Email, email) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (v memoryUsers) Create(ctx context.Context, user *models.User) error {
	m := v.m
	m.mu.Lock()
	defer m.mu.Unlock()

	user.ID = m.nextSeq()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// Seed helpers used by tests.

// AddUser registers a user and returns its id.
func (m *MemoryStore) AddUser(email, passwordHash, fullName, role string, active bool) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSeq()
	m.users[id] = &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		IsActive:     active,
		CreatedAt:    time.Now(),
	}
	return id
}

// AddRoute registers a route and returns its id.
func (m *MemoryStore) AddRoute(origin, destination string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSeq()
	m.routes[id] = &models.Route{ID: id, Origin: origin, Destination: destination}
	return id
}

// AddVehicle registers a vehicle with one seat per label and returns
// its id.
func (m *MemoryStore) AddVehicle(plateNumber, model string, seatLabels []string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSeq()
	m.vehicles[id] = &models.Vehicle{
		ID:          id,
		PlateNumber: plateNumber,
		Model:       model,
		SeatCount:   len(seatLabels),
	}
	for _, label := range seatLabels {
		seatID := m.nextSeq()
		m.seats[seatID] = &models.Seat{
			ID:        seatID,
			VehicleID: id,
			Label:     label,
			CreatedAt: time.Now(),
		}
	}
	return id
}

// AddTrip schedules a trip and returns its id.
func (m *MemoryStore) AddTrip(routeID, vehicleID int64, departsAt, arrivesAt time.Time, priceCents int64, status string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSeq()
	m.trips[id] = &models.Trip{
		ID:         id,
		RouteID:    routeID,
		VehicleID:  vehicleID,
		TravelDate: departsAt.Truncate(24 * time.Hour),
		DepartsAt:  departsAt,
		ArrivesAt:  arrivesAt,
		PriceCents: priceCents,
		Status:     status,
	}
	return id
}

// SetTripPrice changes a trip's per-seat price. Existing reservations
// keep the total they were priced at.
func (m *MemoryStore) SetTripPrice(tripID, priceCents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if trip, ok := m.trips[tripID]; ok {
		trip.PriceCents = priceCents
	}
}

// SetTripStatus opens or closes a trip.
func (m *MemoryStore) SetTripStatus(tripID int64, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if trip, ok := m.trips[tripID]; ok {
		trip.Status = status
	}
}
