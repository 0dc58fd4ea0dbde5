package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// AdminTableHandler manages the table pool.  Resizes and removals go
// through the booking service so every affected advance booking is
// revalidated against the new pool.
type AdminTableHandler struct {
	Svc    *booking.Service
	Tables *repository.TableRepo
}

func NewAdminTableHandler(svc *booking.Service, tables *repository.TableRepo) *AdminTableHandler {
	if svc == nil || tables == nil {
		panic("nil dependency passed to NewAdminTableHandler")
	}
	return &AdminTableHandler{Svc: svc, Tables: tables}
}

type tableReq struct {
	Capacity int `json:"capacity"`
}

// Create handles POST /v1/admin/tables.  Adding capacity never strands
// a booking, so no revalidation runs; the waitlist promoter gets a kick
// instead because someone may now fit.
func (h *AdminTableHandler) Create(c echo.Context) error {
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be a positive number"})
	}
	ctx := c.Request().Context()
	t := &model.Table{Capacity: req.Capacity}
	if err := h.Tables.Create(ctx, t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if _, err := h.Svc.PromoteAll(ctx, req.Capacity); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": t.ID, "capacity": t.Capacity})
}

// List handles GET /v1/admin/tables.
func (h *AdminTableHandler) List(c echo.Context) error {
	items, err := h.Tables.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": items})
}

// Resize handles PATCH /v1/admin/tables/:id.
func (h *AdminTableHandler) Resize(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Svc.ResizeTable(c.Request().Context(), id, req.Capacity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(tableFailureStatus(res), res)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/admin/tables/:id.
func (h *AdminTableHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	res, err := h.Svc.RemoveTable(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(tableFailureStatus(res), res)
	}
	return c.JSON(http.StatusOK, res)
}

// tableFailureStatus maps a table-pool rejection to an HTTP status: a
// missing table is 404, everything else (pinned guests, bad capacity)
// is a conflict with the current state.
func tableFailureStatus(res booking.Result) int {
	if res.Message == "Table not found" {
		return http.StatusNotFound
	}
	return http.StatusConflict
}
