package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/storegrid/storegrid-backend/api"
	"github.com/storegrid/storegrid-backend/api/controllers"
	"github.com/storegrid/storegrid-backend/api/routes"
	"github.com/storegrid/storegrid-backend/internal/auth"
	"github.com/storegrid/storegrid-backend/internal/cart"
	"github.com/storegrid/storegrid-backend/internal/categories"
	"github.com/storegrid/storegrid-backend/internal/memberships"
	"github.com/storegrid/storegrid-backend/internal/orders"
	"github.com/storegrid/storegrid-backend/internal/products"
	"github.com/storegrid/storegrid-backend/internal/stores"
	"github.com/storegrid/storegrid-backend/internal/users"
	"github.com/storegrid/storegrid-backend/pkg/auth/session"
	"github.com/storegrid/storegrid-backend/pkg/config"
	"github.com/storegrid/storegrid-backend/pkg/db"
	"github.com/storegrid/storegrid-backend/pkg/logger"
	"github.com/storegrid/storegrid-backend/pkg/metrics"
	"github.com/storegrid/storegrid-backend/pkg/migrate"
	"github.com/storegrid/storegrid-backend/pkg/redis"
	"go.uber.org/multierr"
)

const shutdownTimeout = 20 * time.Second

func main() {
	_ = godotenv.Load()

	bootstrap := logger.New(logger.Options{ServiceName: "storegrid-api"})

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error(context.Background(), "loading config", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "storegrid-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "fatal", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, closeAll(dbClient, redisClient))
	}

	handler, err := buildHandler(cfg, logg, dbClient, redisClient)
	if err != nil {
		return multierr.Append(err, closeAll(dbClient, redisClient))
	}

	server := api.NewServer(cfg.App.Port, handler, logg)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(ctx)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		runErr = err
	case <-ctx.Done():
		logg.Info(context.Background(), "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		runErr = multierr.Append(runErr, server.Shutdown(shutdownCtx))
		runErr = multierr.Append(runErr, <-serveErr)
	}

	return multierr.Append(runErr, closeAll(dbClient, redisClient))
}

func buildHandler(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (http.Handler, error) {
	accessTTL := time.Duration(cfg.JWT.ExpirationMinutes) * time.Minute
	sessions, err := session.NewManager(redisClient, accessTTL, cfg.JWT.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	membershipsRepo := memberships.NewRepository(gormDB)
	storesRepo := stores.NewRepository(gormDB)
	categoriesRepo := categories.NewRepository(gormDB)
	productsRepo := products.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	ordersRepo := orders.NewRepository(gormDB)

	authSvc, err := auth.NewService(usersRepo, sessions, cfg.JWT, cfg.Password)
	if err != nil {
		return nil, err
	}
	storesSvc, err := stores.NewService(dbClient, storesRepo, membershipsRepo)
	if err != nil {
		return nil, err
	}
	membershipsSvc, err := memberships.NewService(membershipsRepo, usersRepo, storesSvc)
	if err != nil {
		return nil, err
	}
	categoriesSvc, err := categories.NewService(categoriesRepo, storesSvc)
	if err != nil {
		return nil, err
	}
	productsSvc, err := products.NewService(productsRepo, storesSvc)
	if err != nil {
		return nil, err
	}
	cartSvc, err := cart.NewService(cartRepo, productsRepo)
	if err != nil {
		return nil, err
	}
	ordersSvc, err := orders.NewService(dbClient, ordersRepo, cartRepo, logg)
	if err != nil {
		return nil, err
	}

	return routes.New(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Metrics:  metrics.NewHTTP(),
		Sessions: sessions,
		Roles:    membershipsSvc,
		Rates:    redisClient,

		Health:      controllers.NewHealthController(dbClient, redisClient, logg),
		Auth:        controllers.NewAuthController(authSvc, logg),
		Stores:      controllers.NewStoresController(storesSvc, logg),
		Memberships: controllers.NewMembershipsController(membershipsSvc, logg),
		Categories:  controllers.NewCategoriesController(categoriesSvc, logg),
		Products:    controllers.NewProductsController(productsSvc, logg),
		Cart:        controllers.NewCartController(cartSvc, logg),
		Orders:      controllers.NewOrdersController(ordersSvc, logg),
	}), nil
}

func closeAll(dbClient *db.Client, redisClient *redis.Client) error {
	return multierr.Combine(dbClient.Close(), redisClient.Close())
}
