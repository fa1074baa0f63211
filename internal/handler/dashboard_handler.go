package handler

import (
	"github.com/clepigdo/Simig-Webapps/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboard service.DashboardService
	report    service.ReportService
}

func NewDashboardHandler(dashboard service.DashboardService, report service.ReportService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, report: report}
}

// GetDashboard returns the widget snapshot
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboard.GetDashboard()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard data"})
	}
	return c.JSON(data)
}

// GetReport returns the chart/summary payload for a period
// GET /api/reports?period=weekly|monthly|yearly (default monthly)
func (h *DashboardHandler) GetReport(c *fiber.Ctx) error {
	period := c.Query("period", service.PeriodMonthly)

	data, err := h.report.GetReport(period)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to build report"})
	}
	return c.JSON(data)
}
