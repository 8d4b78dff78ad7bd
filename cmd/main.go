package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/namidia/namidia/internal/api"
	"github.com/namidia/namidia/internal/config"
	"github.com/namidia/namidia/internal/coupon"
	"github.com/namidia/namidia/internal/database"
	"github.com/namidia/namidia/internal/logging"
	"github.com/namidia/namidia/internal/messaging"
	"github.com/namidia/namidia/internal/repository"
	"github.com/namidia/namidia/internal/service"
)

// orderPublisher is what the cart service publishes through and main closes
type orderPublisher interface {
	service.OrderPublisher
	Close() error
}

func main() {
	ctx := context.Background()

	// A local .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to read .env: %v", err)
	}

	// Load configuration from environment variables
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting namidia service", zap.String("environment", cfg.App.Environment))

	// Initialize database connections
	db, err := database.NewDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database connections", zap.Error(err))
		}
	}()

	deliveryFee, err := cfg.Cart.DeliveryFeeAmount()
	if err != nil {
		logger.Fatal("invalid cart config", zap.Error(err))
	}

	var publisher orderPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = messaging.NewKafkaOrderPublisher(cfg.Kafka.Brokers, cfg.Kafka.CheckoutTopic)
		logger.Info("checkout orders go to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.CheckoutTopic))
	} else {
		publisher = messaging.NewLogOrderPublisher(logger)
		logger.Warn("KAFKA_BROKERS not set, checkout orders are only logged")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("error closing order publisher", zap.Error(err))
		}
	}()

	confirmationService := service.NewConfirmationService(
		repository.NewConfirmationRepository(db.Postgres),
		repository.NewCouponRepository(db.Postgres),
		coupon.NewRandomGenerator(cfg.Coupon.Prefix, cfg.Coupon.SuffixLength),
		service.ConfirmationOptions{
			MaxAttempts:     cfg.Coupon.MaxAttempts,
			DiscountPercent: cfg.Coupon.DiscountPercent,
		},
		logger,
	)
	cartService := service.NewCartService(
		repository.NewCartRepository(db.Redis, cfg.Cart.KeyPrefix, cfg.Cart.TTL),
		repository.NewProductRepository(db.Postgres),
		publisher,
		deliveryFee,
		logger,
	)

	// Create HTTP mux
	mux := http.NewServeMux()
	interceptors := connect.WithInterceptors(api.NewLoggingInterceptor(logger.Named("rpc")))

	mux.Handle(api.NewConfirmationServiceHandler(service.NewConfirmationServer(confirmationService), interceptors))
	mux.Handle(api.NewCartServiceHandler(service.NewCartServer(cartService), interceptors))

	// Add health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		hostname, _ := os.Hostname()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","service":"namidia","hostname":%q}`, hostname)
	})

	// Add database health check endpoint
	mux.HandleFunc("/health/db", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(r.Context()); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"error","message":"storage unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","postgres":"connected","redis":"connected"}`))
	})

	// Add Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:           cfg.Server.GetServerAddr(),
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(mux, &http2.Server{
			MaxConcurrentStreams: 1000,
		}),
		ErrorLog: zap.NewStdLog(logger.Named("http")),
	}

	// Start server in goroutine
	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited gracefully")
}
