package sales

import (
	"errors"

	"region-sync/core/logger"
	"region-sync/core/region"
	"region-sync/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sales.
type Handler struct {
	service *Service
}

// NewHandler creates a new sales handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sales routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	all := app.Group("/sales")
	all.Get("/", h.HandleListAll)
	all.Get("/summary", h.HandleSummary)
	all.Get("/:id", h.HandleFind)
	all.Delete("/:id", h.HandlePurge)

	regional := app.Group("/regions/:region/sales")
	regional.Get("/", h.HandleListRegion)
	regional.Post("/", h.HandleCreate)
	regional.Put("/:id", h.HandleUpdate)
	regional.Delete("/:id", h.HandleDelete)
}

// status maps service errors onto HTTP status codes.
func status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidRegion):
		return fiber.StatusBadRequest
	case errors.Is(err, region.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, region.ErrStoreUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := status(err)
	if code >= fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error("Sales request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// HandleListAll returns the active sales of every region.
func (h *Handler) HandleListAll(c *fiber.Ctx) error {
	listing, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(listing)
}

// HandleSummary returns per-region counts and totals.
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"regions": h.service.Summary(c.UserContext())})
}

// HandleFind returns the current version of a sale, looked up across regions.
func (h *Handler) HandleFind(c *fiber.Ctx) error {
	id, err := ParseID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	rec, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// HandlePurge physically removes a sale from every region.
func (h *Handler) HandlePurge(c *fiber.Ctx) error {
	id, err := ParseID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	l := logger.WithRayID(h.service.logger, c)
	l.Warn("Purging sale from every region", zap.String("id", id.String()))

	if err := h.service.Purge(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListRegion returns the sales of one region (?deleted=true includes tombstones).
func (h *Handler) HandleListRegion(c *fiber.Ctx) error {
	rows, err := h.service.ListRegion(c.UserContext(), c.Params("region"), utils.ToBool(c.Query("deleted")))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rows)
}

// HandleCreate creates a sale in one region.
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return h.fail(c, errors.Join(ErrInvalidInput, err))
	}

	rec, err := h.service.Create(c.UserContext(), c.Params("region"), in)
	if err != nil {
		return h.fail(c, err)
	}

	logger.WithRayID(h.service.logger, c).Info("Sale created",
		zap.String("region", rec.Region),
		zap.String("id", rec.ID.String()),
	)
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// HandleUpdate updates a sale in one region.
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := ParseID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	var in Input
	if err := c.BodyParser(&in); err != nil {
		return h.fail(c, errors.Join(ErrInvalidInput, err))
	}

	rec, err := h.service.Update(c.UserContext(), c.Params("region"), id, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// HandleDelete soft-deletes a sale in one region.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := ParseID(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	rec, err := h.service.Delete(c.UserContext(), c.Params("region"), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}
