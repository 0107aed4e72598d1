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

	"github.com/SaumyaSingh04/Chow-Back/internal/client"
	"github.com/SaumyaSingh04/Chow-Back/internal/config"
	"github.com/SaumyaSingh04/Chow-Back/internal/delivery"
	"github.com/SaumyaSingh04/Chow-Back/internal/repository"
	"github.com/SaumyaSingh04/Chow-Back/internal/server"
	"github.com/SaumyaSingh04/Chow-Back/internal/service"
	"github.com/SaumyaSingh04/Chow-Back/internal/signature"
	"github.com/SaumyaSingh04/Chow-Back/internal/worker"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyDefaults()

	db := client.InitDBClient(cfg.DatabaseURL)
	razorpayClient := client.NewRazorpayClient(&cfg.Razorpay)
	delhiveryClient := client.NewDelhiveryClient(&cfg.Delhivery)
	geoClient := client.NewGeoClient(&cfg.Geo)

	orderRepo := repository.NewOrderRepository(db)
	itemRepo := repository.NewItemRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)

	estimator := delivery.NewDistanceEstimator(geoClient)
	router := delivery.NewRouter(&cfg.Delivery, estimator, delhiveryClient)
	verifier := signature.NewVerifier(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)

	shipmentService := service.NewShipmentService(
		&cfg.Shipment, delhiveryClient, router, orderRepo, customerRepo,
	)
	orderService := service.NewOrderService(
		db, &cfg.Cleanup, razorpayClient, router, orderRepo, itemRepo, customerRepo,
	)
	paymentService := service.NewPaymentService(
		razorpayClient, verifier, orderRepo, webhookRepo, shipmentService,
	)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	retryWorker := worker.NewShipmentRetryWorker(shipmentService, cfg.Shipment.RetryInterval)
	go retryWorker.Run(workerCtx)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(cfg.JWTSecret, orderService, paymentService, shipmentService, router)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	workerCancel()

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
