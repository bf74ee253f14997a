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

	"github.com/catalog-accounts/internal/config"
	"github.com/catalog-accounts/internal/infrastructure/dynamo"
	jwtinfra "github.com/catalog-accounts/internal/infrastructure/jwt"
	"github.com/catalog-accounts/internal/infrastructure/memory"
	"github.com/catalog-accounts/internal/infrastructure/metrics"
	"github.com/catalog-accounts/internal/infrastructure/notify"
	"github.com/catalog-accounts/internal/infrastructure/smtp"
	"github.com/catalog-accounts/internal/infrastructure/sns"
	"github.com/catalog-accounts/internal/pkg/otc"
	transporthttp "github.com/catalog-accounts/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	deps := &transporthttp.Deps{Generator: otc.NewGenerator(cfg.OTCDigits)}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("WARN: using in-memory stores; data is lost on restart")
		deps.Accounts = memory.NewAccountStore()
		deps.Codes = memory.NewCodeStore()
	case config.StoreDynamo:
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		dynamoClient := dynamo.NewClient(cfg)
		dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)
		deps.Accounts = dynamo.NewAccountRepo(dynamoClient, cfg.DynamoTables.Accounts)
		deps.Codes = dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.OneTimeCodes)
	default:
		log.Fatalf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	// JWT provider (optional, graceful fallback if keys are missing).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else {
		log.Printf("WARN: JWT provider not available, user routes are unauthenticated: %v", err)
	}

	// SNS SMS sender (optional, graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(ctx, cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}
	deps.Notifier = notify.NewRouter(smtp.NewMailer(cfg), smsSender)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Metrics = metrics.NewCollector(reg)
	deps.Gatherer = reg

	routerCtx, stopRouter := context.WithCancel(ctx)
	defer stopRouter()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(routerCtx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, store=%s)", cfg.AppPort, cfg.AppEnv, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	stopRouter()
	log.Println("Server stopped")
}
