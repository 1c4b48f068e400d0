package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/apexfit/storefront/internal/cart"
	"github.com/apexfit/storefront/internal/catalog"
	storehttp "github.com/apexfit/storefront/internal/http"
	"github.com/apexfit/storefront/internal/payment"
	"github.com/apexfit/storefront/internal/session"
	"github.com/apexfit/storefront/pkg/config"
	"github.com/apexfit/storefront/pkg/logger"
	"github.com/apexfit/storefront/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	products, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Error("failed to open catalog", "error", err)
		os.Exit(1)
	}
	defer products.Close()

	if err := products.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Error("failed to run catalog migrations", "error", err)
		os.Exit(1)
	}

	cartRepo, err := buildCartRepository(ctx, cfg)
	if err != nil {
		log.Error("failed to build cart repository", "backend", cfg.CartBackend, "error", err)
		os.Exit(1)
	}

	gateway := payment.NewBreakerGateway(
		payment.NewSimulator(payment.RandomOutcome{FailureRate: cfg.FailureRate}, cfg.StageDelays, log),
		gobreaker.Settings{Name: "payment-gateway"},
	)

	sessions := session.NewManager(cartRepo, gateway, session.Options{
		DrawerAutoClose:       cfg.DrawerAutoClose,
		ConfirmationAutoClose: cfg.ConfirmationAutoClose,
		DeliveryFee:           cfg.DeliveryFee,
		IdleTTL:               cfg.SessionIdleTTL,
	}, log)
	defer sessions.Close()

	router := storehttp.NewRouter(sessions, products, storehttp.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		MaxQuantity:    cfg.MaxQuantity,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info("storefront listening", "port", cfg.HTTPPort, "cart_backend", cfg.CartBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	log.Info("server exited")
}

func buildCartRepository(ctx context.Context, cfg *config.Config) (cart.Repository, error) {
	switch cfg.CartBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return cart.NewRedisRepository(client), nil
	case "mongo":
		db, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		repo := cart.NewMongoRepository(db)
		if err := repo.CreateIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return cart.NewMemoryRepository(), nil
	}
}
