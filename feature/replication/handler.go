package replication

import (
	"errors"
	"net/url"

	"region-sync/core/archive"
	"region-sync/core/logger"
	"region-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultReportLimit = 20

// Handler handles HTTP requests for reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new sync handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleTrigger)
	group.Get("/plan", h.HandlePlan)
	group.Get("/stats", h.HandleStats)
	group.Post("/stats/reset", h.HandleResetStats)
	group.Get("/reports", h.HandleReports)
	group.Get("/reports/*", h.HandleReport)
}

// HandleTrigger runs a reconciliation and returns its outcome.
// A failed run still answers 200: the outcome carries success=false and the
// per-region errors.
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Manual reconciliation requested")

	out := h.service.Trigger(c.UserContext())
	if !out.Success {
		l.Warn("Manual reconciliation failed", zap.String("run_id", out.RunID), zap.String("error", out.ErrorSummary))
	}
	return c.JSON(out)
}

// HandlePlan returns the propagations the next run would perform.
func (h *Handler) HandlePlan(c *fiber.Ctx) error {
	return c.JSON(h.service.Plan(c.UserContext()))
}

// HandleStats returns the stats snapshot.
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// HandleResetStats zeroes every counter.
func (h *Handler) HandleResetStats(c *fiber.Ctx) error {
	logger.WithRayID(h.service.logger, c).Info("Resetting sync stats")
	h.service.ResetStats()
	return c.JSON(fiber.Map{"status": "reset"})
}

// HandleReports lists archived run reports (?limit=N, default 20).
func (h *Handler) HandleReports(c *fiber.Ctx) error {
	limit := utils.ToInt(c.Query("limit"))
	if limit <= 0 {
		limit = defaultReportLimit
	}

	entries, err := h.service.Reports(c.UserContext(), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"reports": entries})
}

// HandleReport returns one archived run report.
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return h.fail(c, errors.Join(archive.ErrInvalidName, err))
	}

	out, err := h.service.Report(c.UserContext(), name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(out)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrArchiveDisabled):
		code = fiber.StatusNotFound
	case errors.Is(err, archive.ErrInvalidName):
		code = fiber.StatusBadRequest
	default:
		logger.WithRayID(h.service.logger, c).Error("Sync request failed", zap.Error(err))
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
