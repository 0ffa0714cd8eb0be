package repository

import (
	"context"

	"github.com/lib/pq"

	"sapar/internal/apperrors"
	"sapar/internal/database"
	"sapar/internal/models"
)

type SeatRepository struct {
	db *database.DB
}

func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

func (r *SeatRepository) ResolveLabels(ctx context.Context, vehicleID int64, labels []string) ([]models.Seat, error) {
	var seats []models.Seat
	query := `
		SELECT id, vehicle_id, label, created_at
		FROM seats
		WHERE vehicle_id = $1 AND label = ANY($2)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, vehicleID, pq.Array(labels))
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer rows.Close()

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

func (r *SeatRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error) {
	var seats []models.Seat
	query := `
		SELECT id, vehicle_id, label, created_at
		FROM seats
		WHERE vehicle_id = $1
		ORDER BY label`

	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, apperrors.Transient(err)
	}
	defer rows.Close()

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
