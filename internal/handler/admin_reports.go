package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// AdminReportHandler serves the generated monthly reports.
type AdminReportHandler struct {
	Reports *repository.ReportRepo
}

func NewAdminReportHandler(reports *repository.ReportRepo) *AdminReportHandler {
	if reports == nil {
		panic("nil repository passed to NewAdminReportHandler")
	}
	return &AdminReportHandler{Reports: reports}
}

// List handles GET /v1/admin/reports, newest month first.
func (h *AdminReportHandler) List(c echo.Context) error {
	items, err := h.Reports.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reports": items})
}
