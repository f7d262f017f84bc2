package handlers

import (
	"bytes"
	"fmt"
	"time"

	"multistore/internal/middleware"
	"multistore/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AnalyticsHandler serves sales reports.
type AnalyticsHandler struct {
	service *services.AnalyticsService
	now     func() time.Time
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, now: time.Now}
}

// RegisterRoutes registers the analytics routes.
func (h *AnalyticsHandler) RegisterRoutes(router fiber.Router) {
	analytics := router.Group("/analytics")
	analytics.Get("/summary", h.HandleSummary)
	analytics.Get("/export", h.HandleExport)
}

// period reads the from/to range, defaulting to the last 30 days.
func (h *AnalyticsHandler) period(c *fiber.Ctx) (time.Time, time.Time, error) {
	from, to, err := dateRange(c)
	if err != nil {
		return from, to, err
	}
	if to.IsZero() {
		to = h.now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to, nil
}

// HandleSummary returns order count, revenue, average order value, status
// breakdown and top products over a date range.
func (h *AnalyticsHandler) HandleSummary(c *fiber.Ctx) error {
	from, to, err := h.period(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid date range",
			"error":   err.Error(),
		})
	}
	summary, err := h.service.Summary(middleware.CurrentStore(c).ID, from, to, queryInt(c, "top", 5))
	if err != nil {
		return respondError(c, "Could not compute analytics", err)
	}
	return c.JSON(summary)
}

// HandleExport downloads the orders of a date range as CSV.
func (h *AnalyticsHandler) HandleExport(c *fiber.Ctx) error {
	from, to, err := h.period(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid date range",
			"error":   err.Error(),
		})
	}
	store := middleware.CurrentStore(c)
	var buf bytes.Buffer
	if err := h.service.ExportCSV(&buf, store.ID, from, to); err != nil {
		return respondError(c, "Could not export orders", err)
	}
	name := fmt.Sprintf("%s-orders-%s-%s.csv", store.Slug, from.Format(time.DateOnly), to.AddDate(0, 0, -1).Format(time.DateOnly))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(name)
	return c.Send(buf.Bytes())
}
