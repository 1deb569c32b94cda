package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felire/audio-medic-api/internal/auth"
	"github.com/felire/audio-medic-api/internal/config"
	"github.com/felire/audio-medic-api/internal/event"
	handler "github.com/felire/audio-medic-api/internal/handler/http"
	"github.com/felire/audio-medic-api/internal/repository/postgres"
	"github.com/felire/audio-medic-api/internal/service"
	"github.com/felire/audio-medic-api/migrations"
	"github.com/felire/audio-medic-api/pkg/database"
	"github.com/felire/audio-medic-api/pkg/health"
	pkgkafka "github.com/felire/audio-medic-api/pkg/kafka"
)

// App wires together all dependencies and runs the API server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	authSvc    *service.AuthService
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "audiomedic")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	jwtManager := auth.NewJWTManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	medicRepo := postgres.NewMedicRepository(pool)
	patientRepo := postgres.NewPatientRepository(pool)
	noteRepo := postgres.NewNoteRepository(pool)
	noteTypeRepo := postgres.NewNoteTypeRepository(pool)
	tokenRepo := postgres.NewRefreshTokenRepository(pool)
	eventProducer := event.NewProducer(producer, logger)

	authSvc := service.NewAuthService(medicRepo, tokenRepo, jwtManager, eventProducer, logger)
	medicSvc := service.NewMedicService(medicRepo, patientRepo, logger)
	patientSvc := service.NewPatientService(patientRepo, medicRepo, logger)
	noteSvc := service.NewNoteService(noteRepo, noteTypeRepo, patientRepo, eventProducer, logger)

	// Health checks. Kafka is non-critical: the API serves reads and writes
	// even when the audit event broker is down.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := handler.NewRouter(handler.RouterConfig{
		AuthService:    authSvc,
		MedicService:   medicSvc,
		PatientService: patientSvc,
		NoteService:    noteSvc,
		JWTManager:     jwtManager,
		HealthHandler:  healthHandler,
		Logger:         logger,
		CORS: handler.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		SecureCookies: !cfg.IsDevelopment(),
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		authSvc:    authSvc,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// The sweeper gets its own cancel so a failed server start can stop it;
	// ctx alone never fires on that path.
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	sweepDone := a.startTokenSweeper(sweepCtx)

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		stopSweeper()
		<-sweepDone
		return err
	}

	stopSweeper()
	<-sweepDone
	return a.Shutdown()
}

// startTokenSweeper periodically deletes expired refresh tokens. It returns a
// channel that closes when the sweeper goroutine exits.
func (a *App) startTokenSweeper(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if a.cfg.TokenSweepInterval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(a.cfg.TokenSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := a.authSvc.SweepExpiredTokens(sweepCtx); err != nil {
					a.logger.Error("refresh token sweep failed", slog.String("error", err.Error()))
				}
				cancel()
			}
		}
	}()
	return done
}

// Shutdown gracefully stops all components in order: drain the HTTP server,
// close the Kafka producer, then close the PostgreSQL pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
