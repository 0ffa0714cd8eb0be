package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createRoutesTable,
		createVehiclesTable,
		createSeatsTable,
		createTripsTable,
		createReservationsTable,
		createReservationSeatsTable,
		createPaymentsTable,
		createTicketValidationsTable,
		createReservationIndexes,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(64) NOT NULL,
    full_name VARCHAR(200) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'RIDER',
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('RIDER', 'OPERATOR', 'ADMIN'))
);`

const createRoutesTable = `
CREATE TABLE IF NOT EXISTS routes (
    id SERIAL PRIMARY KEY,
    origin VARCHAR(200) NOT NULL,
    destination VARCHAR(200) NOT NULL,

    UNIQUE(origin, destination)
);`

const createVehiclesTable = `
CREATE TABLE IF NOT EXISTS vehicles (
    id SERIAL PRIMARY KEY,
    plate_number VARCHAR(20) UNIQUE NOT NULL,
    model VARCHAR(100) NOT NULL,
    seat_count INTEGER NOT NULL DEFAULT 0
);`

const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    id SERIAL PRIMARY KEY,
    vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
    label VARCHAR(10) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(vehicle_id, label)
);`

const createTripsTable = `
CREATE TABLE IF NOT EXISTS trips (
    id SERIAL PRIMARY KEY,
    route_id INTEGER NOT NULL REFERENCES routes(id),
    vehicle_id INTEGER NOT NULL REFERENCES vehicles(id),
    travel_date DATE NOT NULL,
    departs_at TIMESTAMP NOT NULL,
    arrives_at TIMESTAMP NOT NULL,
    price_cents BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'OPEN',

    CHECK (status IN ('OPEN', 'CLOSED')),
    CHECK (price_cents >= 0)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id SERIAL PRIMARY KEY,
    rider_id INTEGER NOT NULL REFERENCES users(id),
    trip_id INTEGER NOT NULL REFERENCES trips(id),
    status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
    total_cents BIGINT NOT NULL,
    ticket_code VARCHAR(40) UNIQUE NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED'))
);`

const createReservationSeatsTable = `
CREATE TABLE IF NOT EXISTS reservation_seats (
    id SERIAL PRIMARY KEY,
    reservation_id INTEGER NOT NULL REFERENCES reservations(id),
    trip_id INTEGER NOT NULL REFERENCES trips(id),
    seat_id INTEGER NOT NULL REFERENCES seats(id),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(reservation_id, seat_id)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id SERIAL PRIMARY KEY,
    reservation_id INTEGER NOT NULL REFERENCES reservations(id),
    method VARCHAR(50) NOT NULL,
    amount_cents BIGINT NOT NULL,
    result VARCHAR(20) NOT NULL,
    settled_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (result IN ('PAID', 'FAILED'))
);`

const createTicketValidationsTable = `
CREATE TABLE IF NOT EXISTS ticket_validations (
    id SERIAL PRIMARY KEY,
    reservation_id INTEGER UNIQUE NOT NULL REFERENCES reservations(id),
    operator_id INTEGER NOT NULL REFERENCES users(id),
    validated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createReservationIndexes = `
CREATE INDEX IF NOT EXISTS reservation_seats_trip_seat_idx
ON reservation_seats (trip_id, seat_id);
CREATE INDEX IF NOT EXISTS reservations_pending_created_idx
ON reservations (created_at) WHERE status = 'PENDING';`
