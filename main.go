package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"multistore/internal/app"
	"multistore/internal/config"
	"multistore/internal/database"
	"multistore/internal/events"
	"multistore/pkg/rabbitmq"
)

const eventQueue = "multistore.events.worker"

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// --- Event bus ---
	// Without RABBITMQ_URL events are delivered in-process.
	var opts app.Options
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: events.Exchange})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		opts.Publisher = events.NewAMQPPublisher(mqClient)
	}

	srv := app.New(cfg, db, opts)

	if mqClient != nil {
		log.Println("Starting RabbitMQ consumer for store events...")
		if err := events.Consume(mqClient, eventQueue, srv.Events); err != nil {
			log.Fatalf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	if cfg.IsDemo {
		if err := app.SeedDemo(srv, app.DefaultDemo); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := srv.App.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	srv.Close() // drain in-process event handlers before the database goes away
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}
