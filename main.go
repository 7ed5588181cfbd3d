package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"receiver/config"
	"receiver/logging"
	"receiver/server"
)

var version = "dev"

func main() {
	config.ParseArgs()
	if config.CliArgs.Version {
		fmt.Printf("receiver %s\n", version)
		os.Exit(0)
	}

	if _, err := config.LoadConfig(config.CliArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()

	level, _ := logging.ParseLevel(cfg.Log.Level)
	log, err := logging.Configure(logging.Options{Level: level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}

	sink, err := logging.NewSink(cfg.Log.Format, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure payload sink: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, sink)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
