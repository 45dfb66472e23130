package syncapi

import (
	"errors"

	"calendar-sync/core/logger"
	"calendar-sync/feature/calsync"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the sync runner.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/health", h.HandleHealth)

	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/run", h.HandleRun)
}

// HandleHealth reports liveness.
// @Summary Health Check
// @Description Reports that the service is up. Does not require an API key.
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string "Status"
// @Router /health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleStatus returns the scheduler state and the last run report.
// @Summary Sync Status
// @Description Returns whether a run is in progress, the schedule, the next scheduled run and the report of the last completed run.
// @Tags sync
// @Produce json
// @Success 200 {object} scheduler.Status "Status"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

// HandleRun triggers a sync pass and waits for its report.
// @Summary Run Sync
// @Description Runs one sync pass over every enabled profile. A request arriving while a pass is running waits for that pass and returns its report.
// @Tags sync
// @Produce json
// @Param dry_run query boolean false "Plan without provisioning or writing"
// @Success 200 {object} calsync.RunReport "Run Report"
// @Failure 500 {object} map[string]interface{} "Run finished with failures"
// @Failure 503 {object} map[string]string "Control dataset unavailable"
// @Router /sync/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	dryRun := c.QueryBool("dry_run", false)
	l.Info("Triggering sync run", zap.Bool("dry_run", dryRun))

	report, err := h.service.Run(c.UserContext(), dryRun)
	switch {
	case err == nil:
		return c.JSON(report)
	case errors.Is(err, calsync.ErrNoControlDataset):
		l.Error("Sync run could not start", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Warn("Sync run finished with failures", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}
}
