package main

import (
	"fmt"

	"github.com/deppfellow/budgetbud/internal/config"
	"github.com/deppfellow/budgetbud/internal/repository"
	"github.com/deppfellow/budgetbud/internal/server"
	"github.com/deppfellow/budgetbud/internal/service"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/budgetbud/internal/logger"
)

// app is what every command that touches the database needs.
type app struct {
	cfg           *config.Config
	logger        *zerolog.Logger
	loggerService *loggerPkg.LoggerService
	server        *server.Server
	services      *service.Services
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, *loggerPkg.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := loggerPkg.NewLoggerService(cfg.Observability)
	log := loggerPkg.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, &log, loggerService, nil
}

func newApp() (*app, error) {
	cfg, log, loggerService, err := loadConfigAndLogger()
	if err != nil {
		return nil, err
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	services, err := service.NewServices(srv, repository.NewRepositories(srv))
	if err != nil {
		loggerService.Shutdown()
		return nil, fmt.Errorf("failed to create services: %w", err)
	}

	return &app{
		cfg:           cfg,
		logger:        log,
		loggerService: loggerService,
		server:        srv,
		services:      services,
	}, nil
}
