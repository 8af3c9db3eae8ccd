package service

import (
	"sync"

	"github.com/avelarde/libris/config"
	"github.com/avelarde/libris/internal/jsonlog"
	"github.com/avelarde/libris/repository"
)

type Service interface {
	books
	categories
	reviews
	users
	tokens
	search
}

// service defines the app's service layer.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository
}

// New creates a new instance of Service.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	return &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
	}
}
