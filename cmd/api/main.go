package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/entrada-hq/entrada/internal/handlers"
	"github.com/entrada-hq/entrada/internal/repository"
	"github.com/entrada-hq/entrada/internal/service"
	"github.com/entrada-hq/entrada/pkg/config"
	"github.com/entrada-hq/entrada/pkg/database"
	"github.com/entrada-hq/entrada/pkg/events"
	"github.com/entrada-hq/entrada/pkg/logger"
	mw "github.com/entrada-hq/entrada/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Redis backs the login rate limiter
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool)
	visitorRepo := repository.NewVisitorRepository(pool)
	accessRepo := repository.NewAccessRepository(pool)
	venueRepo := repository.NewVenueRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	idCardTypeRepo := repository.NewIDCardTypeRepository(pool)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg)
	visitService := service.NewVisitService(accessRepo, visitorRepo, idCardTypeRepo, eventBus)
	directoryService := service.NewDirectoryService(visitorRepo)
	userService := service.NewUserService(userRepo)
	referenceService := service.NewReferenceService(venueRepo, roleRepo, idCardTypeRepo)

	// Initialize handlers
	h := handlers.New(authService, visitService, directoryService, userService, referenceService, cfg)

	loginLimiter := mw.NewRateLimiter(redisClient, mw.RateLimitConfig{
		Requests: cfg.Auth.LoginRateLimit,
		Window:   cfg.Auth.LoginRateWindow,
	})

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	anyStaff := []domain.Role{
		domain.RoleReceptionist,
		domain.RoleVenueSupervisor,
		domain.RoleSystemAdministrator,
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter.Middleware()).Post("/token", h.Token)
			r.With(h.RequireRoles(anyStaff...)).Get("/me", h.Me)
		})

		r.Route("/access", func(r chi.Router) {
			r.Use(h.RequireRoles(anyStaff...))
			r.Post("/register_full_visit", h.RegisterFullVisit)
			r.Post("/", h.CreateAccess)
			r.Get("/", h.ListAccesses)
			r.Get("/{id}", h.GetAccess)
			r.Patch("/{id}/exit", h.MarkVisitExit)
			r.With(h.RequireRoles(domain.RoleSystemAdministrator)).Patch("/{id}", h.UpdateAccess)
			r.With(h.RequireRoles(domain.RoleSystemAdministrator)).Delete("/{id}", h.DeleteAccess)
		})

		r.Route("/visitors", func(r chi.Router) {
			r.Use(h.RequireRoles(anyStaff...))
			r.Get("/", h.ListVisitors)
			r.Get("/{id}", h.GetVisitor)
			r.Patch("/{id}", h.UpdateVisitor)
			r.With(h.RequireRoles(domain.RoleSystemAdministrator)).Delete("/{id}", h.DeleteVisitor)
		})

		r.Route("/venues", func(r chi.Router) {
			r.Use(h.RequireRoles(anyStaff...))
			r.Get("/", h.ListVenues)
			r.Get("/{id}", h.GetVenue)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRoles(domain.RoleSystemAdministrator))
				r.Post("/", h.CreateVenue)
				r.Patch("/{id}", h.UpdateVenue)
				r.Delete("/{id}", h.DeleteVenue)
			})
		})

		r.Route("/roles", func(r chi.Router) {
			r.Use(h.RequireRoles(anyStaff...))
			r.Get("/", h.ListRoles)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRoles(domain.RoleSystemAdministrator))
				r.Post("/", h.CreateRole)
				r.Delete("/{id}", h.DeleteRole)
			})
		})

		r.Route("/id-card-types", func(r chi.Router) {
			r.Use(h.RequireRoles(anyStaff...))
			r.Get("/", h.ListIDCardTypes)
			r.Group(func(r chi.Router) {
				r.Use(h.RequireRoles(domain.RoleSystemAdministrator))
				r.Post("/", h.CreateIDCardType)
				r.Delete("/{id}", h.DeleteIDCardType)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(h.RequireRoles(domain.RoleSystemAdministrator))
			r.Post("/", h.CreateUser)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Patch("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeactivateUser)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
