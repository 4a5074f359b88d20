package app

import (
	"time"

	"stayledger-backend/internal/auth"
	"stayledger-backend/internal/config"
	"stayledger-backend/internal/database"
	"stayledger-backend/internal/health"
	"stayledger-backend/internal/links"
	"stayledger-backend/internal/middleware"
	"stayledger-backend/internal/projects"
	"stayledger-backend/internal/records"
	"stayledger-backend/internal/suppliers"
	"stayledger-backend/internal/sweeper"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned scheduler is not started; the caller owns its
// lifecycle.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, *sweeper.Scheduler, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Session (Redis); the client is reused by the health marker
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	// Health (no auth)
	healthHandlers := &health.Handlers{Rdb: rdb}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			healthHandlers.DB = sqlDB
		}
	}
	app.Get("/health/json", healthHandlers.JSON)

	// Auth (no auth middleware)
	var userFinder auth.UserFinder
	if db != nil {
		userFinder = &auth.GormUserFinder{DB: db}
	}
	authHandlers := &auth.Handlers{UserFinder: userFinder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	var scheduler *sweeper.Scheduler

	// --- Protected modules (auth required) ---
	if db != nil && rdb != nil {
		recordService := &records.Service{DB: db}
		recordHandlers := &records.Handlers{Service: recordService}
		sweep := &sweeper.Sweeper{DB: db}
		sweepHandlers := &sweeper.Handlers{Sweeper: sweep}

		formGroup := app.Group("/api/v1/forms", middleware.RequireAuth())
		formGroup.Post("/", recordHandlers.Intake)
		formGroup.Get("/", recordHandlers.ListActive)
		formGroup.Post("/leave", recordHandlers.ProcessLeave)
		formGroup.Post("/restore", recordHandlers.Restore)
		formGroup.Post("/sweep", sweepHandlers.RunSweep)
		formGroup.Get("/retired", recordHandlers.ListRetired)
		formGroup.Get("/archived", recordHandlers.ListArchived)
		formGroup.Get("/archived/:id", recordHandlers.GetArchived)
		formGroup.Patch("/:id", recordHandlers.UpdateProfile)
		formGroup.Put("/:id/rent", recordHandlers.UpsertRent)
		formGroup.Delete("/:id/rents/:monthYear", recordHandlers.RemoveRent)
		formGroup.Delete("/:id", recordHandlers.Retire)

		supplierService := &suppliers.Service{DB: db}
		supplierHandlers := &suppliers.Handlers{Service: supplierService}
		supplierGroup := app.Group("/api/v1/suppliers", middleware.RequireAuth())
		supplierGroup.Post("/", supplierHandlers.Create)
		supplierGroup.Get("/", supplierHandlers.List)

		linkService := &links.Service{DB: db, Grace: time.Minute}
		projectService := &projects.Service{DB: db}
		projectHandlers := &projects.Handlers{
			Service:   projectService,
			Links:     linkService,
			Suppliers: supplierService,
		}
		projectGroup := app.Group("/api/v1/projects", middleware.RequireAuth())
		projectGroup.Post("/", projectHandlers.Create)
		projectGroup.Get("/", projectHandlers.List)
		projectGroup.Get("/:projectId", projectHandlers.Get)
		projectGroup.Post("/:id/employees", projectHandlers.AddEmployee)
		projectGroup.Post("/:projectId/employees/:employeeId/payments", projectHandlers.AddEmployeePayment)
		projectGroup.Post("/:projectId/suppliers", projectHandlers.LinkSupplier)
		projectGroup.Get("/:projectId/suppliers", projectHandlers.ListSuppliers)

		scheduler = &sweeper.Scheduler{
			Sweeper:    sweep,
			Reconciler: linkService,
			Interval:   cfg.SweepInterval,
		}
	}

	return app, db, rdb, scheduler, nil
}
