package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sidesales/sidesales-backend/internal/api"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/config"
	"github.com/sidesales/sidesales-backend/internal/database"
	"github.com/sidesales/sidesales-backend/internal/encryption"
	"github.com/sidesales/sidesales-backend/internal/jobs"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/repository"
	"github.com/sidesales/sidesales-backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		logger.L.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level)

	cipher, err := encryption.New(cfg.Encryption.Key)
	if err != nil {
		return err
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.L.Info("connected to database", "path", cfg.Database.Path)

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		return err
	}
	if applied > 0 {
		logger.L.Info("applied database migrations", "count", applied)
	}

	// Create repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	costRepo := repository.NewAdditionalCostRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Create services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	systemService := service.NewSystemService(db)
	authService := service.NewAuthService(userRepo, sessionRepo, tokens)
	userService := service.NewUserService(db, userRepo, sessionRepo)
	purchaseService := service.NewPurchaseService(db, purchaseRepo, contributionRepo, costRepo, saleRepo, cipher)
	saleService := service.NewSaleService(db, saleRepo, paymentRepo, purchaseRepo, cipher)
	dashboardService := service.NewDashboardService(db, userRepo, purchaseRepo, contributionRepo, costRepo, saleRepo, paymentRepo)

	if _, err := authService.BootstrapAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return err
	}

	scheduler := jobs.NewScheduler()
	if err := scheduler.AddSessionPurge(cfg.Jobs.SessionPurgeSchedule, authService); err != nil {
		return err
	}
	scheduler.Start()

	// Create router
	router := api.NewRouter(systemService, authService, userService, purchaseService, saleService, dashboardService, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Serve until SIGINT/SIGTERM, then drain within the shutdown timeout
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L.Info("starting server", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.L.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		scheduler.Stop(shutdownCtx)
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.L.Info("server exited")
	return nil
}
