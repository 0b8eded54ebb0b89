package sales

import (
	"time"

	"region-sync/core/region"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the sales feature.
func NewFeature(replicas []region.Replica, counter Counter, cacheTTL time.Duration, logger *zap.Logger) *Feature {
	svc := NewService(replicas, counter, cacheTTL, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service exposes the feature's service, e.g. to invalidate its cache after a run.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "sales"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
