package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/config"
	"github.com/BradenHooton/bizadmin/internal/database"
	"github.com/BradenHooton/bizadmin/internal/handlers"
	"github.com/BradenHooton/bizadmin/internal/metrics"
	middlewareCustom "github.com/BradenHooton/bizadmin/internal/middleware"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/repositories"
	"github.com/BradenHooton/bizadmin/internal/routes"
	"github.com/BradenHooton/bizadmin/internal/services"
	pkgauth "github.com/BradenHooton/bizadmin/pkg/auth"
	pkghttp "github.com/BradenHooton/bizadmin/pkg/http"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := pkglogger.New(cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.NewConnection(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.MigrateOnStart {
		if err := db.Migrate(ctx, database.MigrateUp); err != nil {
			logger.Error("failed to run migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	m := metrics.New()
	m.RegisterPool(db.Pool)

	// Initialize repositories
	principalRepo := repositories.NewPrincipalRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	countryRepo := repositories.NewCountryRepository(db)
	currencyRepo := repositories.NewCurrencyRepository(db)
	productRepo := repositories.NewProductRepository(db)

	// Initialize security services
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)
	hasher := pkgauth.NewPasswordHasher(cfg.Auth.BcryptCost)
	auditLogger := pkglogger.NewAuditLogger(logger)

	authService, err := services.NewAuthService(principalRepo, refreshTokenRepo, tokenManager, hasher, services.AuthPolicy{
		MaxFailedAttempts:              cfg.Auth.MaxFailedAttempts,
		LockoutDuration:                cfg.Auth.LockoutDuration,
		RefreshTokenExpiry:             cfg.Auth.RefreshTokenExpiry,
		RevokeSessionsOnPasswordChange: cfg.Auth.RevokeSessionsOnPasswordChange,
	}, logger, auditLogger)
	if err != nil {
		logger.Error("failed to initialize auth service", slog.Any("error", err))
		os.Exit(1)
	}
	authService.SetMetrics(m)
	authService.SetTimingDelay(auth.NewTimingDelay(auth.TimingConfig{
		BaseDelay:   cfg.Auth.TimingDelayBase,
		RandomDelay: cfg.Auth.TimingDelayRandom,
	}))

	// AWS SES lockout notifications
	if cfg.Notify.FromAddress != "" {
		notifier, err := services.NewSESLockoutNotifier(ctx, cfg.Notify.AWSRegion, cfg.Notify.FromAddress, logger)
		if err != nil {
			logger.Error("failed to initialize lockout notifier", slog.Any("error", err))
			os.Exit(1)
		}
		authService.SetLockoutNotifier(notifier)
	} else {
		logger.Info("NOTIFY_FROM_ADDRESS not set, lockout notifications disabled")
	}

	principalService := services.NewPrincipalService(principalRepo, hasher, logger, auditLogger)
	principalService.SetMetrics(m)

	countryService := services.NewCatalogService("countries", models.CountrySchema, countryRepo,
		func(c *models.Country) uuid.UUID { return c.ID }, logger, auditLogger)
	currencyService := services.NewCatalogService("currencies", models.CurrencySchema, currencyRepo,
		func(c *models.Currency) uuid.UUID { return c.ID }, logger, auditLogger)
	productService := services.NewCatalogService("products", models.ProductSchema, productRepo,
		func(p *models.Product) uuid.UUID { return p.ID }, logger, auditLogger)
	countryService.SetMetrics(m)
	currencyService.SetMetrics(m)
	productService.SetMetrics(m)

	referenceService := services.NewDefaultReferenceService(logger)
	referenceService.SetMetrics(m)

	// Bootstrap first admin if configured
	bootstrapCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := ensureAdmin(bootstrapCtx, principalRepo, principalService, logger); err != nil {
		logger.Error("failed to ensure admin principal", slog.Any("error", err))
	}
	cancel()

	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.RequestInfo(ipConfig))
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(m.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	router.Route("/api/v1", func(r chi.Router) {
		routes.RegisterRoutes(r, routes.Handlers{
			Auth:       handlers.NewAuthHandler(authService, principalService),
			Users:      handlers.NewUserHandler(principalService),
			Countries:  handlers.NewCountryHandler(countryService),
			Currencies: handlers.NewCurrencyHandler(currencyService),
			Products:   handlers.NewProductHandler(productService),
			Reference:  handlers.NewReferenceHandler(referenceService),
		}, tokenManager, principalRepo, middlewareCustom.RateLimitByIP(middlewareCustom.RateLimitConfig{
			RequestsPerMinute: cfg.Auth.LoginRateLimitPerMinute,
			IPConfig:          ipConfig,
		}))
	})

	router.Handle("/metrics", m.Handler())

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "up"})
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdmin creates the first admin principal if ADMIN_USERNAME,
// ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdmin(ctx context.Context, repo *repositories.PrincipalRepository, svc *services.PrincipalService, logger *slog.Logger) error {
	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")

	if username == "" || email == "" || password == "" {
		logger.Info("admin bootstrap variables not set, skipping admin creation")
		return nil
	}

	_, err := repo.GetByIdentifier(ctx, username)
	if err == nil {
		logger.Info("admin principal already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	if _, err := svc.Create(ctx, services.CreatePrincipalInput{
		Username:    username,
		Email:       email,
		DisplayName: "Administrator",
		Password:    password,
		Role:        models.RoleAdmin,
	}); err != nil {
		return fmt.Errorf("failed to create admin principal: %w", err)
	}

	logger.Info("admin principal created", slog.String("username", username))
	return nil
}
