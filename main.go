package main

import (
	"flag"
	"os"
	"sync"
	"time"

	"github.com/avelarde/libris/config"
	"github.com/avelarde/libris/handler"
	"github.com/avelarde/libris/internal/jsonlog"
	"github.com/avelarde/libris/repository"
	"github.com/avelarde/libris/repository/postgres"
	"github.com/avelarde/libris/service"
	"github.com/jellydator/ttlcache/v3"
)

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	repo    repository.Repository
	service service.Service
	handler *handler.Handler
}

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a yaml configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	// Shared resources: waitgroup for background jobs and the review-owner cache.
	var wg sync.WaitGroup
	cache := ttlcache.New(ttlcache.WithTTL[string, string](30 * time.Minute))
	go cache.Start()

	repo := repository.New(db)
	service := service.New(cfg, &wg, logger, repo)
	handler := handler.New(cfg, logger, cache, service)

	app := &app{
		config:  cfg,
		repo:    repo,
		service: service,
		handler: handler,
	}

	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}
