package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldpay/internal/domain/audit"
	"fieldpay/internal/domain/auth"
	"fieldpay/internal/domain/imports"
	"fieldpay/internal/domain/rates"
	"fieldpay/internal/domain/reconcile"
	"fieldpay/internal/domain/reports"
	"fieldpay/internal/domain/tickets"
	"fieldpay/internal/domain/trucklog"
	"fieldpay/internal/platform/config"
	"fieldpay/internal/platform/db"
	"fieldpay/internal/platform/jobs"
	"fieldpay/internal/platform/metrics"
	"fieldpay/internal/transport/http/api"
	audithandler "fieldpay/internal/transport/http/handlers/audit"
	authhandler "fieldpay/internal/transport/http/handlers/auth"
	importshandler "fieldpay/internal/transport/http/handlers/imports"
	jobshandler "fieldpay/internal/transport/http/handlers/jobs"
	rateshandler "fieldpay/internal/transport/http/handlers/rates"
	reconcilehandler "fieldpay/internal/transport/http/handlers/reconcile"
	reportshandler "fieldpay/internal/transport/http/handlers/reports"
	ticketshandler "fieldpay/internal/transport/http/handlers/tickets"
	trucklogshandler "fieldpay/internal/transport/http/handlers/trucklogs"
	"fieldpay/internal/transport/http/middleware"
)

// App holds everything the HTTP layer is built from.
type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Metrics *metrics.Collector
	Jobs    *jobs.Service

	Auth      *auth.Service
	Rates     *rates.Service
	Tickets   *tickets.Service
	TruckLogs *trucklog.Service
	Imports   *imports.Service
	Reconcile *reconcile.Service
	Reports   *reports.Service
	Audit     *audit.Service

	Idempotency *middleware.IdempotencyStore
}

// NewApp builds the services over one pool.
func NewApp(cfg config.Config, pool *pgxpool.Pool) *App {
	collector := metrics.New()
	rateSvc := rates.NewService(rates.NewStore(pool))
	ticketSvc := tickets.NewService(tickets.NewStore(pool), rateSvc)
	logSvc := trucklog.NewService(trucklog.NewStore(pool))

	return &App{
		Config:      cfg,
		DB:          pool,
		Metrics:     collector,
		Jobs:        jobs.New(jobs.NewStore(pool)),
		Auth:        auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL),
		Rates:       rateSvc,
		Tickets:     ticketSvc,
		TruckLogs:   logSvc,
		Imports:     imports.NewService(imports.NewStore(pool), ticketSvc),
		Reconcile:   reconcile.NewService(ticketSvc, rateSvc, reconcile.NewStore(pool), collector),
		Reports:     reports.NewService(ticketSvc, logSvc, rateSvc, reports.NewStore(pool)),
		Audit:       audit.New(pool),
		Idempotency: middleware.NewIdempotencyStore(pool),
	}
}

// New connects to the database, applies migrations and seed data as
// configured, and builds the App. Callers own Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	app := NewApp(cfg, pool)
	if cfg.RunSeed {
		if err := db.Seed(ctx, cfg, app.Rates, app.Auth); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return app, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()
	app.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown failed: %v", err)
		}
	}()

	log.Printf("fieldpay server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server failed: %v", err)
	}
}

// Router mounts health probes, metrics and the versioned API.
func (a *App) Router() http.Handler {
	cfg := a.Config
	perms := auth.StaticPermissions{}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(chimw.Recoverer)
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader},
			ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if a.DB == nil {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	jobsHandler := jobshandler.NewHandler(a.Jobs, a.Tickets, perms, a.Audit)
	var repriceTrigger rateshandler.RepriceTrigger
	if cfg.RepriceOnRateChange {
		repriceTrigger = jobsHandler
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(a.Auth, perms, a.Audit)
		authHandler.RegisterPublicRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

			authHandler.RegisterRoutes(r)
			rateshandler.NewHandler(a.Rates, perms, a.Audit, repriceTrigger).RegisterRoutes(r)
			jobsHandler.RegisterRoutes(r)
			ticketshandler.NewHandler(a.Tickets, perms, a.Audit, a.Idempotency).RegisterRoutes(r)
			trucklogshandler.NewHandler(a.TruckLogs, perms, a.Audit).RegisterRoutes(r)
			importshandler.NewHandler(a.Imports, perms, a.Audit, a.Metrics, cfg.MaxUploadBytes).RegisterRoutes(r)
			reconcilehandler.NewHandler(a.Reconcile, perms, a.Audit, cfg.MaxUploadBytes).RegisterRoutes(r)
			reportshandler.NewHandler(a.Reports, a.Auth, perms, cfg.StatementDir).RegisterRoutes(r)
			audithandler.NewHandler(a.Audit, perms).RegisterRoutes(r)
		})
	})

	return router
}
