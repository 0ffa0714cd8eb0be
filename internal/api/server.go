package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"sapar/internal/cache"
	"sapar/internal/config"
	"sapar/internal/database"
	"sapar/internal/handlers"
	"sapar/internal/jobs"
	"sapar/internal/logger"
	"sapar/internal/messaging"
	"sapar/internal/metrics"
	"sapar/internal/middleware"
	"sapar/internal/repository"
	"sapar/internal/service"
)

// Server ties the HTTP surface, the stores and the background sweeper
// together.
type Server struct {
	router    *gin.Engine
	config    *config.Config
	db        *database.DB
	nats      *messaging.NATSClient
	authCache *cache.AuthCache
	stores    *repository.Stores
	services  *service.Services
	sweeper   *jobs.ExpirySweeper
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// Auth cache is an optimization; the server runs without it.
	authCache, err := cache.NewAuthCache(cfg.Cache)
	if err != nil {
		logger.Get().Warn("Auth cache unavailable, falling back to database auth", "error", err)
		authCache = nil
	}

	stores := repository.NewStores(db)
	services := service.NewServices(stores, natsClient, cfg.ReservationExpiry)
	sweeper := jobs.NewExpirySweeper(stores.Reservations, natsClient, cfg.ReservationExpiry, cfg.ExpirySweepInterval)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(metrics.Middleware())

	server := &Server{
		router:    router,
		config:    cfg,
		db:        db,
		nats:      natsClient,
		authCache: authCache,
		stores:    stores,
		services:  services,
		sweeper:   sweeper,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.stores.Users, s.authCache))
	{
		trips := api.Group("/trips")
		{
			trips.GET("", h.ListTrips)
			trips.GET("/:id", h.GetTrip)
			trips.GET("/:id/seats", h.ListAvailableSeats)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.CreateReservation)
			reservations.GET("", h.ListReservations)
		}

		api.POST("/payments", h.SettlePayment)

		api.POST("/tickets/validate", h.ValidateTicket)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", metrics.Handler())
}

func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":   health.Status,
		"service":  "sapar-api",
		"database": health,
	})
}

// StartSweeper launches the background expiry reclaim loop.
func (s *Server) StartSweeper(ctx context.Context) {
	s.sweeper.Start(ctx)
}

// Run serves HTTP until the listener fails. Callers that need graceful
// shutdown use GetRouter with their own http.Server instead.
func (s *Server) Run() error {
	s.sweeper.Start(context.Background())
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup stops the sweeper and closes external connections.
func (s *Server) Cleanup() error {
	s.sweeper.Stop()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.authCache != nil {
		if err := s.authCache.Close(); err != nil {
			logger.Get().Error("Error closing auth cache", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
