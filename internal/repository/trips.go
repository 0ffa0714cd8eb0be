package repository

import (
	"context"
	"database/sql"

	"sapar/internal/apperrors"
	"sapar/internal/database"
	"sapar/internal/models"
)

type TripRepository struct {
	db *database.DB
}

func NewTripRepository(db *database.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	trip := &models.Trip{}
	query := `
		SELECT id, route_id, vehicle_id, travel_date, departs_at, arrives_at, price_cents, status
		FROM trips
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&trip.ID,
		&trip.RouteID,
		&trip.VehicleID,
		&trip.TravelDate,
		&trip.DepartsAt,
		&trip.ArrivesAt,
		&trip.PriceCents,
		&trip.Status,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Transient(err)
	}

	return trip, nil
}

func (r *TripRepository) List(ctx context.Context) ([]models.TripDetail, error) {
	var trips []models.TripDetail
	query := `
		SELECT t.id, t.route_id, t.vehicle_id, t.travel_date, t.departs_at, t.arrives_at,
		       t.price_cents, t.status, ro.origin, ro.destination
		FROM trips t
		JOIN routes ro ON ro.id = t.route_id
		ORDER BY t.departs_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer rows.Close()

	for rows.Next() {
		var trip models.TripDetail
		err := rows.Scan(
			&trip.ID,
			&trip.RouteID,
			&trip.VehicleID,
			&trip.TravelDate,
			&trip.DepartsAt,
			&trip.ArrivesAt,
			&trip.PriceCents,
			&trip.Status,
			&trip.Origin,
			&trip.Destination,
		)
		if err != nil {
			return nil, apperrors.Transient(err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err)
	}
	return trips, nil
}
