package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/order-management/internal/config"
	"github.com/vasiliy-maslov/order-management/internal/db"
	"github.com/vasiliy-maslov/order-management/internal/handler"
	"github.com/vasiliy-maslov/order-management/internal/metrics"
	"github.com/vasiliy-maslov/order-management/internal/order"
	"github.com/vasiliy-maslov/order-management/internal/product"
	"github.com/vasiliy-maslov/order-management/internal/remote"
	"github.com/vasiliy-maslov/order-management/internal/resilience"
	"github.com/vasiliy-maslov/order-management/internal/transport"
	"github.com/vasiliy-maslov/order-management/internal/user"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Logger = log.With().Str("service", cfg.App.ServiceName).Logger()
	log.Info().Msg("Order service starting...")

	ctx := context.Background()
	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	exporter := metrics.NewExporter()
	registry := resilience.NewRegistry(exporter)

	var users order.UserDirectory
	if cfg.UserService.Local() {
		users = order.LocalUserDirectory{Repo: user.NewRepository(dbConn.Pool)}
	} else {
		users = remote.NewUserClient(cfg.UserService.BaseURL,
			registry.Register("user-service", cfg.UserService.Resilience))
	}

	var catalog order.Catalog
	if cfg.ProductService.Local() {
		catalog = order.LocalCatalog{Repo: product.NewRepository(dbConn.Pool)}
	} else {
		catalog = remote.NewProductClient(cfg.ProductService.BaseURL,
			registry.Register("product-service", cfg.ProductService.Resilience))
	}

	payments := remote.NewPaymentClient(cfg.PaymentService.BaseURL,
		registry.Register("payment-service", cfg.PaymentService.Resilience))
	shipments := remote.NewShipmentClient(cfg.ShipmentService.BaseURL,
		registry.Register("shipment-service", cfg.ShipmentService.Resilience))

	orderRepo := order.NewRepository(dbConn.Pool)
	svc := order.NewService(orderRepo, users, catalog, payments, shipments)
	h := handler.NewOrderHandler(svc)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      transport.NewRouter(h, exporter.Handler()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
