package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/nutrireg/internal/api"
	"stealthcompany.com/nutrireg/internal/app"
	"stealthcompany.com/nutrireg/internal/config"
	"stealthcompany.com/nutrireg/internal/orchestrator"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	if err := app.StartLogging("nutrireg-api", cfg.Logging); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Msg("Starting nutrireg-api service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orchestrator.NewSignalHandler().HandleSignals(ctx, cancel)

	registry, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize registry")
	}

	registry.StartSystemMetrics(ctx)

	handler := api.NewHandler(registry.Service, cfg.Server.MaxUploadBytes)
	router := api.SetupRoutes(handler, cfg.Auth.JWTSecret)
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, API is open to anyone who can reach it")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sm := orchestrator.NewServiceManager(server, time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	sm.OnShutdown("store", registry.Close)

	if err := sm.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("API service stopped with error")
	}
}
