// The seed binary loads a small demo dataset: a few users, two routes,
// two vehicles with their seat maps, and trips for the next days.
// Rerunning it is safe, existing rows are left alone.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"sapar/internal/config"
	"sapar/internal/database"
	"sapar/internal/logger"
	"sapar/internal/models"
	"sapar/internal/repository"
	"sapar/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ctx := context.Background()
	stores := repository.NewStores(db)
	users := &seedUsers{svc: service.NewServices(stores, nil, cfg.ReservationExpiry).Users}

	users.ensure(ctx, "rider@example.com", "rider123", "Demo Rider", models.RoleRider)
	users.ensure(ctx, "operator@example.com", "operator123", "Demo Operator", models.RoleOperator)
	users.ensure(ctx, "admin@example.com", "admin123", "Demo Admin", models.RoleAdmin)

	almatyAstana := ensureRoute(ctx, db, "Almaty", "Astana")
	astanaKaraganda := ensureRoute(ctx, db, "Astana", "Karaganda")

	bus1 := ensureVehicle(ctx, db, "KZ123ABC", "Yutong ZK6122", seatLabels(12))
	bus2 := ensureVehicle(ctx, db, "KZ456DEF", "Setra S517", seatLabels(16))

	departure := time.Now().Truncate(time.Hour).Add(24 * time.Hour)
	ensureTrip(ctx, db, almatyAstana, bus1, departure, departure.Add(16*time.Hour), 1200000)
	ensureTrip(ctx, db, astanaKaraganda, bus2, departure.Add(2*time.Hour), departure.Add(5*time.Hour), 350000)

	logger.Get().Info("Seed data loaded")
}

type seedUsers struct {
	svc *service.UserService
}

func (s *seedUsers) ensure(ctx context.Context, email, password, fullName, role string) {
	if _, err := s.svc.Register(ctx, email, password, fullName, role); err != nil {
		logger.Get().Info("Skipping user", "email", email, "reason", err)
	}
}

// seatLabels produces labels 1A, 1B, 2A, 2B... for a two-abreast layout.
func seatLabels(count int) []string {
	labels := make([]string, 0, count)
	for i := 0; i < count; i++ {
		labels = append(labels, fmt.Sprintf("%d%c", i/2+1, 'A'+i%2))
	}
	return labels
}

func ensureRoute(ctx context.Context, db *database.DB, origin, destination string) int64 {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO routes (origin, destination)
		VALUES ($1, $2)
		ON CONFLICT (origin, destination) DO UPDATE SET origin = EXCLUDED.origin
		RETURNING id`,
		origin, destination).Scan(&id)
	if err != nil {
		logger.Fatal("Failed to seed route", "error", err, "origin", origin, "destination", destination)
	}
	return id
}

func ensureVehicle(ctx context.Context, db *database.DB, plate, model string, labels []string) int64 {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO vehicles (plate_number, model, seat_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (plate_number) DO UPDATE SET model = EXCLUDED.model
		RETURNING id`,
		plate, model, len(labels)).Scan(&id)
	if err != nil {
		logger.Fatal("Failed to seed vehicle", "error", err, "plate", plate)
	}

	for _, label := range labels {
		_, err := db.ExecContext(ctx, `
			INSERT INTO seats (vehicle_id, label)
			VALUES ($1, $2)
			ON CONFLICT (vehicle_id, label) DO NOTHING`,
			id, label)
		if err != nil {
			logger.Fatal("Failed to seed seat", "error", err, "plate", plate, "label", label)
		}
	}
	return id
}

func ensureTrip(ctx context.Context, db *database.DB, routeID, vehicleID int64, departs, arrives time.Time, priceCents int64) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO trips (route_id, vehicle_id, travel_date, departs_at, arrives_at, price_cents, status)
		SELECT $1, $2, $3, $4, $5, $6, 'OPEN'
		WHERE NOT EXISTS (
			SELECT 1 FROM trips WHERE vehicle_id = $2 AND departs_at = $4
		)`,
		routeID, vehicleID, departs.Truncate(24*time.Hour), departs, arrives, priceCents)
	if err != nil {
		logger.Fatal("Failed to seed trip", "error", err, "route_id", routeID)
	}
}
