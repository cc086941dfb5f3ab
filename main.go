package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockwatch/config"
	"stockwatch/models"
	"stockwatch/routes"
	"stockwatch/scheduler"
	"stockwatch/services"
	"stockwatch/services/analysis"
	"stockwatch/services/datafetcher"
	"stockwatch/services/queue"

	"github.com/gin-gonic/gin"
)

const queuePollInterval = 250 * time.Millisecond

func main() {
	log.Println("==============================================")
	log.Println("  Stock Monitor - Starting...")
	log.Println("==============================================")

	cfg := config.Load()
	if violations := cfg.Validate(); len(violations) > 0 {
		for _, v := range violations {
			log.Println(v)
		}
		log.Fatalf("Configuration invalid: %d problem(s) found", len(violations))
	}

	db, err := cfg.InitDB()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	if err := models.MigrateStockModels(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	// Delivery queues first so everything downstream can log and mail.
	mailer := queue.NewSMTPMailer(cfg.EmailServer, cfg.EmailPort, cfg.EmailUsername, cfg.EmailPassword, cfg.EmailFrom, cfg.EmailSSL)
	emailQueue := queue.NewEmailQueue(mailer, queuePollInterval)
	logQueue := queue.NewLogQueue(queuePollInterval)

	registry := analysis.NewRegistry()
	if cfg.EnableBollinger {
		registry.Register(analysis.NewBollingerBandsModel(cfg.BandPeriod, logQueue))
	}
	if cfg.EnableMACD {
		registry.Register(analysis.NewMACDModel(logQueue))
	}
	if cfg.EnableVolume {
		registry.Register(analysis.NewVolumeModel(cfg.VolumeAlertThreshold, logQueue))
	}
	log.Printf("%d analysis model(s) enabled", registry.Len())

	store := services.NewGormStore(db)
	source := datafetcher.NewHTTPPriceSource(cfg.PriceAPIURL)
	hub := services.NewAlertHub()

	server := services.NewStockServer(cfg, store, source, registry, emailQueue, logQueue, hub)
	if err := server.Start(); err != nil {
		log.Fatalf("Server start failed: %v", err)
	}

	sched := scheduler.New(cfg, server)
	if err := sched.Start(); err != nil {
		log.Fatalf("Scheduler start failed: %v", err)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	routes.SetupRoutes(router, cfg, server, hub)

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on 0.0.0.0:%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}

	sched.Stop()
	// Drains both queues: every alert and log entry accepted before
	// shutdown is delivered before the process exits.
	server.Stop()
	log.Println("Stopped")
}
