package repository

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/lib/pq"

	"sapar/internal/apperrors"
	"sapar/internal/database"
	"sapar/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// CreateWithClaims performs the whole booking transaction: lock the seat
// rows, re-verify the trip is OPEN, reject seats with an active claim,
// then insert the reservation and its claims. Locking the seat rows in
// id order serializes concurrent bookings that target overlapping seats
// and keeps lock acquisition deadlock-free.
func (r *ReservationRepository) CreateWithClaims(ctx context.Context, res *models.Reservation, seatIDs []int64, activeSince time.Time) error {
	ids := make([]int64, len(seatIDs))
	copy(ids, seatIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Transient(err)
	}
	defer tx.Rollback()

	var tripStatus string
	err = tx.QueryRowContext(ctx, `SELECT status FROM trips WHERE id = $1`, res.TripID).Scan(&tripStatus)
	if err == sql.ErrNoRows || (err == nil && tripStatus != models.TripOpen) {
		return apperrors.ErrTripNotOpen
	}
	if err != nil {
		return apperrors.Transient(err)
	}

	lockQuery := `SELECT id FROM seats WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	if _, err := tx.ExecContext(ctx, lockQuery, pq.Array(ids)); err != nil {
		return apperrors.Transient(err)
	}

	// With the seat rows locked, no concurrent booking for these seats
	// can get past this check before we commit.
	conflictQuery := `
		SELECT rs.seat_id
		FROM reservation_seats rs
		JOIN reservations r ON r.id = rs.reservation_id
		WHERE rs.trip_id = $1 AND rs.seat_id = ANY($2)
		  AND ` + activeCond("$3") + `
		LIMIT 1`
	var claimed int64
	err = tx.QueryRowContext(ctx, conflictQuery, res.TripID, pq.Array(ids), activeSince).Scan(&claimed)
	if err == nil {
		return apperrors.ErrSeatConflict
	}
	if err != sql.ErrNoRows {
		return apperrors.Transient(err)
	}

	insertQuery := `
		INSERT INTO reservations (rider_id, trip_id, status, total_cents, ticket_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, insertQuery,
		res.RiderID,
		res.TripID,
		models.ReservationPending,
		res.TotalCents,
		res.TicketCode,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "reservations_ticket_code_key") {
			return apperrors.ErrTicketCodeTaken
		}
		return apperrors.Transient(err)
	}
	res.Status = models.ReservationPending

	claimQuery := `INSERT INTO reservation_seats (reservation_id, trip_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(ids)*3)
	for i, seatID := range ids {
		if i > 0 {
			claimQuery += ","
		}
		claimQuery += placeholders(i*3+1, 3)
		args = append(args, res.ID, res.TripID, seatID)
	}
	if _, err := tx.ExecContext(ctx, claimQuery, args...); err != nil {
		return apperrors.Transient(err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Transient(err)
	}
	return nil
}

// AvailableSeats derives the free seats of a trip from reservation state
// alone. No availability table exists to maintain: a claim stops
// counting the moment its reservation ages past the cutoff, whether or
// not the expiry sweep has run.
func (r *ReservationRepository) AvailableSeats(ctx context.Context, tripID int64, activeSince time.Time) ([]models.Seat, error) {
	query := `
		SELECT s.id, s.vehicle_id, s.label, s.created_at
		FROM seats s
		JOIN trips t ON t.vehicle_id = s.vehicle_id
		WHERE t.id = $1
		  AND NOT EXISTS (
			SELECT 1
			FROM reservation_seats rs
			JOIN reservations r ON r.id = rs.reservation_id
			WHERE rs.trip_id = t.id AND rs.seat_id = s.id
			  AND ` + activeCond("$2") + `
		  )
		ORDER BY s.label`

	rows, err := r.db.QueryContext(ctx, query, tripID, activeSince)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var seat models.Seat
		if err := rows.Scan(&seat.ID, &seat.VehicleID, &seat.Label, &seat.CreatedAt); err != nil {
			return nil, apperrors.Transient(err)
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err)
	}
	return seats, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	res := &models.Reservation{}
	query := `
		SELECT id, rider_id, trip_id, status, total_cents, ticket_code, created_at, updated_at
		FROM reservations
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID,
		&res.RiderID,
		&res.TripID,
		&res.Status,
		&res.TotalCents,
		&res.TicketCode,
		&res.CreatedAt,
		&res.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	return res, nil
}

func (r *ReservationRepository) GetSeats(ctx context.Context, reservationID int64) ([]models.Seat, error) {
	query := `
		SELECT s.id, s.vehicle_id, s.label, s.created_at
		FROM seats s
		JOIN reservation_seats rs ON rs.seat_id = s.id
		WHERE rs.reservation_id = $1
		ORDER BY s.label`

	rows, err := r.db.QueryContext(ctx, query, reservationID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer rows.Close()

	var seats []models.Seat
	for rows.Next() {
		var seat models.Seat
		if err := rows.Scan(&seat.ID, &seat.VehicleID, &seat.Label, &seat.CreatedAt); err != nil {
			return nil, apperrors.Transient(err)
		}
		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err)
	}
	return seats, nil
}

func (r *ReservationRepository) ListByRider(ctx context.Context, riderID int64) ([]models.Reservation, error) {
	query := `
		SELECT id, rider_id, trip_id, status, total_cents, ticket_code, created_at, updated_at
		FROM reservations
		WHERE rider_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, riderID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		err := rows.Scan(
			&res.ID,
			&res.RiderID,
			&res.TripID,
			&res.Status,
			&res.TotalCents,
			&res.TicketCode,
			&res.CreatedAt,
			&res.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Transient(err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err)
	}
	return reservations, nil
}

// Settle records a payment attempt and moves the reservation to its
// terminal state in one transaction. The row lock on the reservation
// makes the status re-check and the transition atomic with respect to a
// concurrent expiry sweep: whichever commits first wins, the other sees
// the terminal state and fails cleanly.
func (r *ReservationRepository) Settle(ctx context.Context, reservationID int64, method string, amountCents int64, activeSince time.Time) (*models.Payment, string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", apperrors.Transient(err)
	}
	defer tx.Rollback()

	var status string
	var totalCents int64
	var createdAt time.Time
	checkQuery := `SELECT status, total_cents, created_at FROM reservations WHERE id = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, checkQuery, reservationID).Scan(&status, &totalCents, &createdAt)
	if err == sql.ErrNoRows {
		return nil, "", apperrors.ErrReservationNotPending
	}
	if err != nil {
		return nil, "", apperrors.Transient(err)
	}

	// A PENDING reservation past the cutoff has already lost its seats
	// to the derived availability view; settling it would resell them.
	if status != models.ReservationPending || !createdAt.After(activeSince) {
		return nil, "", apperrors.ErrReservationNotPending
	}

	result := models.PaymentFailed
	newStatus := models.ReservationCancelled
	if amountCents >= totalCents {
		result = models.PaymentPaid
		newStatus = models.ReservationConfirmed
	}

	payment := &models.Payment{
		ReservationID: reservationID,
		Method:        method,
		AmountCents:   amountCents,
		Result:        result,
	}
	insertQuery := `
		INSERT INTO payments (reservation_id, method, amount_cents, result)
		VALUES ($1, $2, $3, $4)
		RETURNING id, settled_at`
	err = tx.QueryRowContext(ctx, insertQuery, reservationID, method, amountCents, result).
		Scan(&payment.ID, &payment.SettledAt)
	if err != nil {
		return nil, "", apperrors.Transient(err)
	}

	updateQuery := `UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateQuery, newStatus, reservationID); err != nil {
		return nil, "", apperrors.Transient(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, "", apperrors.Transient(err)
	}
	return payment, newStatus, nil
}

// CancelExpired is the batch sweep behind the expiry reclaimer. The
// condition-qualified UPDATE only ever touches PENDING rows, so running
// it concurrently with settlement or with itself cannot resurrect a
// confirmed reservation or cancel one twice.
func (r *ReservationRepository) CancelExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = 'CANCELLED', updated_at = NOW()
		WHERE status = 'PENDING' AND created_at <= $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, apperrors.Transient(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Transient(err)
	}
	return affected, nil
}

// Validate records the one-shot check-in of a ticket. The row lock on
// the reservation orders concurrent validations; the UNIQUE constraint
// on ticket_validations.reservation_id is the backstop.
func (r *ReservationRepository) Validate(ctx context.Context, ticketCode string, operatorID int64) (*models.TicketValidation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer tx.Rollback()

	var reservationID int64
	var status string
	lookupQuery := `SELECT id, status FROM reservations WHERE ticket_code = $1 FOR UPDATE`
	err = tx.QueryRowContext(ctx, lookupQuery, ticketCode).Scan(&reservationID, &status)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTicketNotFound
	}
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	if status != models.ReservationConfirmed {
		return nil, apperrors.ErrTicketNotConfirmed
	}

	var exists int64
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM ticket_validations WHERE reservation_id = $1`, reservationID).Scan(&exists)
	if err == nil {
		return nil, apperrors.ErrAlreadyValidated
	}
	if err != sql.ErrNoRows {
		return nil, apperrors.Transient(err)
	}

	validation := &models.TicketValidation{
		ReservationID: reservationID,
		OperatorID:    operatorID,
	}
	insertQuery := `
		INSERT INTO ticket_validations (reservation_id, operator_id)
		VALUES ($1, $2)
		RETURNING id, validated_at`
	err = tx.QueryRowContext(ctx, insertQuery, reservationID, operatorID).
		Scan(&validation.ID, &validation.ValidatedAt)
	if err != nil {
		if isUniqueViolation(err, "ticket_validations_reservation_id_key") {
			return nil, apperrors.ErrAlreadyValidated
		}
		return nil, apperrors.Transient(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Transient(err)
	}
	return validation, nil
}

// activeCond renders the active-claim condition: the owning reservation
// is CONFIRMED, or PENDING and created after the expiry cutoff bound at
// the given placeholder.
func activeCond(param string) string {
	return `(r.status = 'CONFIRMED' OR (r.status = 'PENDING' AND r.created_at > ` + param + `))`
}

// placeholders renders "($n, $n+1, ...)" for bulk inserts.
func placeholders(start, count int) string {
	s := "("
	for i := 0; i < count; i++ {
		if i > 0 {
			s += ", "
		}
		s += "$" + strconv.Itoa(start+i)
	}
	return s + ")"
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == constraint
	}
	return false
}
