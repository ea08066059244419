package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sokohub/sokohub-order-service/internal/config"
	httpdelivery "github.com/sokohub/sokohub-order-service/internal/delivery/http"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/handlers"
	publisher "github.com/sokohub/sokohub-order-service/internal/infrastructure/kafka"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/metrics"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/migrate"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/mpesa"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/postgres"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/postgres/repository"
	"github.com/sokohub/sokohub-order-service/internal/logger"
	usecase "github.com/sokohub/sokohub-order-service/internal/usecase/order"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	appLogger, err := logger.New(cfg.LogConfig.LogLevel, cfg.LogConfig.LogFormat)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Sync()

	// Init database
	db := postgres.MustInitDB(cfg)
	if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Init order repo
	orderRepo := repository.NewDefaultOrderRepository(db)

	// Init push-payment gateway client
	gateway := mpesa.NewClient(cfg.Mpesa)

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
	kafkaPublisher := publisher.NewDefaultKafkaPublisher(brokers, cfg.Kafka.Topic)
	defer kafkaPublisher.Close()

	// Init metrics
	orderMetrics := metrics.NewOrderMetrics()

	// Init order usecase
	uc := usecase.NewDefaultOrderUsecase(
		orderRepo,
		gateway,
		kafkaPublisher,
		orderMetrics,
		appLogger,
	)

	orderHandler := handlers.NewOrderHandler(uc, appLogger)
	paymentHandler := handlers.NewPaymentHandler(uc, orderMetrics, appLogger)

	router := httpdelivery.NewRouter(orderHandler, paymentHandler, cfg.JWT.Secret, appLogger)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: router,
	}

	go func() {
		appLogger.Infow("http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to serve: %v\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Errorw("forced shutdown", "error", err)
	}
	uc.Flush()
}
