package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// ReservationHandler exposes the reservation lifecycle to customers.
// Validation and business rejections surface as OK=false results with a
// displayable message; ownership is enforced here so the booking service
// can stay identity-agnostic.
type ReservationHandler struct {
	Svc          *booking.Service
	Reservations *repository.ReservationRepo
	Bills        *repository.BillRepo
}

func NewReservationHandler(svc *booking.Service, reservations *repository.ReservationRepo, bills *repository.BillRepo) *ReservationHandler {
	if svc == nil || reservations == nil || bills == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc, Reservations: reservations, Bills: bills}
}

type createReservationReq struct {
	StartsAt time.Time `json:"starts_at"`
	Guests   int       `json:"guests"`
}

type joinWaitlistReq struct {
	Guests int `json:"guests"`
}

// Create handles POST /v1/reservations: an advance booking for a
// concrete slot.  A full slot answers 409 with up to three alternative
// times; validation rejections answer 400 with the reason.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Svc.Create(c.Request().Context(), uid, req.StartsAt.UTC(), req.Guests)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		if len(res.Alternatives) > 0 {
			return c.JSON(http.StatusConflict, res)
		}
		return c.JSON(http.StatusBadRequest, res)
	}
	return c.JSON(http.StatusCreated, res)
}

// Join handles POST /v1/waitlist: a walk-in party.  The response says
// whether the party was seated immediately or queued.
func (h *ReservationHandler) Join(c echo.Context) error {
	uid, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req joinWaitlistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	res, err := h.Svc.JoinWaitlist(c.Request().Context(), uid, req.Guests)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(http.StatusBadRequest, res)
	}
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles DELETE /v1/reservations/:id.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	r, httpErr := h.owned(c)
	if r == nil {
		return httpErr
	}
	res, err := h.Svc.Cancel(c.Request().Context(), r.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(http.StatusOK, res)
}

// CheckIn handles POST /v1/reservations/:id/checkin: the party arrived
// and receives a table.
func (h *ReservationHandler) CheckIn(c echo.Context) error {
	r, httpErr := h.owned(c)
	if r == nil {
		return httpErr
	}
	res, err := h.Svc.ReceiveTable(c.Request().Context(), r.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(http.StatusOK, res)
}

// Bill handles GET /v1/reservations/:id/bill, creating the bill on
// first request.
func (h *ReservationHandler) Bill(c echo.Context) error {
	r, httpErr := h.owned(c)
	if r == nil {
		return httpErr
	}
	res, err := h.Svc.GetOrCreateBill(c.Request().Context(), r.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(http.StatusOK, res)
}

// Pay handles POST /v1/bills/:id/pay: settles the bill, completes the
// reservation and frees the table.
func (h *ReservationHandler) Pay(c echo.Context) error {
	uid, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	billID, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bill id"})
	}

	ctx := c.Request().Context()
	b, err := h.Bills.GetByID(ctx, billID)
	if err != nil {
		if errors.Is(err, repository.ErrBillNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	r, err := h.Reservations.GetByID(ctx, b.ReservationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if r.CustomerID != uid && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	res, err := h.Svc.PayAndComplete(ctx, billID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !res.OK {
		return c.JSON(http.StatusConflict, res)
	}
	return c.JSON(http.StatusOK, res)
}

// List handles GET /v1/reservations: every reservation the caller owns.
func (h *ReservationHandler) List(c echo.Context) error {
	uid, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Svc.ListByCustomer(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": reservationViews(items)})
}

// ByCode handles GET /v1/reservations/code/:code: resolves a
// confirmation code, scoped to its owner.
func (h *ReservationHandler) ByCode(c echo.Context) error {
	uid, err := getCustomerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	code := c.Param("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid code"})
	}
	r, err := h.Svc.FindByCode(c.Request().Context(), uid, code)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, reservationView(r))
}

// owned loads the :id reservation and enforces that the caller owns it
// or is an admin.  When the returned reservation is nil the rejection
// response has already been written.
func (h *ReservationHandler) owned(c echo.Context) (*model.Reservation, error) {
	uid, err := getCustomerID(c)
	if err != nil {
		return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	r, err := h.Reservations.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if r.CustomerID != uid && !isAdmin(c) {
		return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return r, nil
}

// ----- views -----

type reservationResp struct {
	ID               uint64     `json:"id"`
	TableID          *uint64    `json:"table_id,omitempty"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	Guests           int        `json:"guests"`
	ConfirmationCode string     `json:"confirmation_code"`
	Status           string     `json:"status"`
	Kind             string     `json:"kind"`
	CheckedInAt      *time.Time `json:"checked_in_at,omitempty"`
	CheckedOutAt     *time.Time `json:"checked_out_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func reservationView(r *model.Reservation) reservationResp {
	return reservationResp{
		ID:               r.ID,
		TableID:          r.TableID,
		StartsAt:         r.StartsAt,
		Guests:           r.Guests,
		ConfirmationCode: r.ConfirmationCode,
		Status:           string(r.Status),
		Kind:             string(r.Kind),
		CheckedInAt:      r.CheckedInAt,
		CheckedOutAt:     r.CheckedOutAt,
		CreatedAt:        r.CreatedAt,
	}
}

func reservationViews(items []model.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(items))
	for i := range items {
		out = append(out, reservationView(&items[i]))
	}
	return out
}
