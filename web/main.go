package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/df07/go-stratified-raytracer/pkg/config"
	"github.com/df07/go-stratified-raytracer/pkg/output"
	"github.com/df07/go-stratified-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 0, "Port to serve on (overrides RAYTRACER_PORT)")
	envFile := flag.String("env", ".env", "Environment file to load before RAYTRACER_* variables")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *port > 0 {
		cfg.Port = *port
	}

	var opts server.Options
	opts.LogOut = os.Stdout
	if cfg.UploadEnabled() {
		uploader, err := output.NewS3Uploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 uploader: %v", err)
		}
		opts.Uploader = uploader
		log.Printf("Finished renders will be uploaded to bucket %s", cfg.S3.Bucket)
	}

	webServer := server.NewServer(cfg, opts)

	log.Printf("Stratified Raytracer Web Server")
	log.Printf("Visit http://localhost:%d/api/scenes to list scenes", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- webServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("Error starting server: %v", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Printf("Shutting down, waiting for queued renders...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}
