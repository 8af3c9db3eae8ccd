package handler

import (
	"github.com/avelarde/libris/config"
	"github.com/avelarde/libris/internal/jsonlog"
	"github.com/avelarde/libris/service"
	"github.com/jellydator/ttlcache/v3"
)

// Handler defines the handler layer.
type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	cache   *ttlcache.Cache[string, string]
	service service.Service
}

// New creates a new instance of Handler.
func New(cfg config.Config, logger *jsonlog.Logger, cache *ttlcache.Cache[string, string], service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		cache:   cache,
		service: service,
	}
}
