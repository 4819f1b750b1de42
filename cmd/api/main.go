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

	"github.com/dealradar/api/internal/config"
	"github.com/dealradar/api/internal/infrastructure/alert"
	"github.com/dealradar/api/internal/infrastructure/dynamo"
	jwtinfra "github.com/dealradar/api/internal/infrastructure/jwt"
	s3infra "github.com/dealradar/api/internal/infrastructure/s3"
	snsinfra "github.com/dealradar/api/internal/infrastructure/sns"
	transporthttp "github.com/dealradar/api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — the notification tray endpoints stay locked
	// without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// SNS push sender (optional — fan-out and retraction degrade to
	// persistence-only when absent).
	var pushSender snsinfra.PushSender
	if sender, err := snsinfra.NewSender(cfg); err == nil {
		pushSender = sender
	} else {
		log.Printf("WARN: SNS push sender not available: %v", err)
	}

	// S3 event archive.
	s3Client := s3infra.NewClient(cfg)
	archive := s3infra.NewArchive(s3Client, cfg.ArchiveBucket)

	// On-call webhook for reconciliation failures.
	var alerter alert.Alerter
	if cfg.AlertWebhookURL != "" {
		alerter = alert.NewWebhook(cfg.AlertWebhookURL)
	}

	deps := &transporthttp.Deps{
		OfferRepo:        dynamo.NewOfferRepo(dynamoClient, cfg.DynamoTables.Offers),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		ReceiptRepo:      dynamo.NewReceiptRepo(dynamoClient, cfg.DynamoTables.Receipts),
		FavoriteRepo:     dynamo.NewFavoriteRepo(dynamoClient, cfg.DynamoTables.Favorites),
		DeviceRepo:       dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		PushSender:       pushSender,
		Archive:          archive,
		Alerter:          alerter,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
