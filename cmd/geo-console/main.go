package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/AlexG695/geo-engine-console/api"
	"github.com/AlexG695/geo-engine-console/config"
	"github.com/AlexG695/geo-engine-console/engine"
	"github.com/AlexG695/geo-engine-console/geo"
	"github.com/AlexG695/geo-engine-console/internal"
	"github.com/AlexG695/geo-engine-console/stream"
	"github.com/AlexG695/geo-engine-console/view"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := internal.NewLogger(cfg.EnvMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutMS)*time.Millisecond)
	session := engine.NewSession(
		client,
		geo.LatLng{Lat: cfg.Map.CenterLat, Lng: cfg.Map.CenterLng},
		cfg.Map.RadiusMeters,
		cfg.Alerts.Capacity,
		log,
	)

	ctx := context.Background()
	if err := session.Bootstrap(ctx); err != nil {
		// The stream fills in drivers as they move; zones reload on the
		// next mutation. Start degraded rather than refuse to start.
		log.Warnw("bootstrap incomplete", "error", err)
	}

	conn, err := stream.Dial(ctx, cfg.Stream.URL, log)
	if err != nil {
		log.Fatalw("stream dial failed", "url", cfg.Stream.URL, "error", err)
	}
	go conn.ReadLoop(session.HandleStreamMessage)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Refresh.DriversEvery, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.TimeoutMS)*time.Millisecond)
		defer cancel()
		if err := session.RefreshDrivers(ctx); err != nil {
			log.Warnw("driver refresh failed", "error", err)
		}
	}); err != nil {
		log.Fatalw("invalid refresh schedule", "schedule", cfg.Refresh.DriversEvery, "error", err)
	}
	scheduler.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: view.NewServer(session, log).Router(),
	}
	go func() {
		log.Infow("console listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnw("server shutdown", "error", err)
	}
	<-scheduler.Stop().Done()
	conn.Close()
}
