package handler

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

var hhmmRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// AdminHoursHandler manages the weekly schedule and per-date overrides.
// Every mutation ends with a revalidation pass that cancels upcoming
// reservations no longer inside an opening window.
type AdminHoursHandler struct {
	Svc   *booking.Service
	Hours *repository.HoursRepo
}

func NewAdminHoursHandler(svc *booking.Service, hours *repository.HoursRepo) *AdminHoursHandler {
	if svc == nil || hours == nil {
		panic("nil dependency passed to NewAdminHoursHandler")
	}
	return &AdminHoursHandler{Svc: svc, Hours: hours}
}

type weeklyHoursReq struct {
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
	Closed   bool   `json:"closed"`
}

type overrideReq struct {
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
	Closed   bool   `json:"closed"`
	Reason   string `json:"reason"`
}

// ListWeekly handles GET /v1/admin/hours.
func (h *AdminHoursHandler) ListWeekly(c echo.Context) error {
	items, err := h.Hours.ListWeekly(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"hours": items})
}

// PutWeekly handles PUT /v1/admin/hours/:weekday (0=Sunday..6=Saturday).
func (h *AdminHoursHandler) PutWeekly(c echo.Context) error {
	weekday, err := parseIDParamAllowZero(c, "weekday")
	if err != nil || weekday > 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekday"})
	}
	var req weeklyHoursReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !req.Closed && (!hhmmRe.MatchString(req.OpensAt) || !hhmmRe.MatchString(req.ClosesAt)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at/closes_at must be HH:MM"})
	}

	ctx := c.Request().Context()
	row := &model.OpeningHours{
		Weekday:  int(weekday),
		OpensAt:  req.OpensAt,
		ClosesAt: req.ClosesAt,
		Closed:   req.Closed,
	}
	if err := h.Hours.UpsertWeekly(ctx, row); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	canceled, err := h.Svc.RevalidateHours(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"hours": row, "canceled": canceled})
}

// ListOverrides handles GET /v1/admin/overrides, listing overrides from
// today onward.
func (h *AdminHoursHandler) ListOverrides(c echo.Context) error {
	today := time.Now().UTC().Format("2006-01-02")
	items, err := h.Hours.ListOverrides(c.Request().Context(), today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"overrides": items})
}

// PutOverride handles PUT /v1/admin/overrides/:date (YYYY-MM-DD).
func (h *AdminHoursHandler) PutOverride(c echo.Context) error {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	var req overrideReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !req.Closed && (!hhmmRe.MatchString(req.OpensAt) || !hhmmRe.MatchString(req.ClosesAt)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "opens_at/closes_at must be HH:MM"})
	}

	ctx := c.Request().Context()
	o := &model.DateOverride{
		Date:     date,
		OpensAt:  req.OpensAt,
		ClosesAt: req.ClosesAt,
		Closed:   req.Closed,
		Reason:   req.Reason,
	}
	if err := h.Hours.UpsertOverride(ctx, o); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	canceled, err := h.Svc.RevalidateHours(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"override": o, "canceled": canceled})
}

// DeleteOverride handles DELETE /v1/admin/overrides/:date.  Dropping an
// override changes the effective window too, so revalidation runs here
// as well.
func (h *AdminHoursHandler) DeleteOverride(c echo.Context) error {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	ctx := c.Request().Context()
	if err := h.Hours.DeleteOverride(ctx, date); err != nil {
		if errors.Is(err, repository.ErrOverrideNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "override not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	canceled, err := h.Svc.RevalidateHours(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"canceled": canceled})
}
