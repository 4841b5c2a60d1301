package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/api"
	"github.com/talentotech/storefront/internal/cart"
	"github.com/talentotech/storefront/internal/catalog"
	"github.com/talentotech/storefront/internal/checkout"
	"github.com/talentotech/storefront/internal/config"
	"github.com/talentotech/storefront/internal/inventory"
	"github.com/talentotech/storefront/internal/session"
	"github.com/talentotech/storefront/internal/stats"
	"github.com/talentotech/storefront/internal/storage"
)

const cartSnapshotKey = "carrito"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Session persistence adapter
	kv, err := newStorage(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	ctx := context.Background()

	// Engine wiring: inventory client -> session -> cart -> checkout
	client := inventory.NewClient(cfg.Inventory, logger)
	sess := session.New(ctx, kv, client, logger)
	store := cart.NewStore(ctx, kv, cartSnapshotKey, logger)
	recorder := stats.NewRecorder(kv, logger)
	coord := checkout.NewCoordinator(store, client, recorder, logger)
	cache := catalog.NewService(client, time.Duration(cfg.Catalog.CacheSeconds)*time.Second, logger)

	router := api.NewRouter(cfg, &api.Deps{
		Session:   sess,
		Cart:      store,
		Checkout:  coord,
		Catalog:   cache,
		Inventory: client,
		Stats:     recorder,
	}, logger)

	// CORS for the browser UI
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("Storefront listening",
		zap.String("port", cfg.Port),
		zap.String("session_id", sess.ID().String()),
		zap.String("inventory", cfg.Inventory.BaseURL),
		zap.String("storage", cfg.Storage.Backend),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newStorage(cfg *config.Config, logger *zap.Logger) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return storage.NewRedisStore(storage.NewRedisClient(cfg.Storage.Redis)), nil
	case "postgres":
		db, err := storage.NewConnection(cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		return storage.NewPostgresStore(db, logger)
	default:
		return storage.NewFileStore(cfg.Storage.StateDir)
	}
}
