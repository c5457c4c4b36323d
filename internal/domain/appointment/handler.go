package appointment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/platform/auth"
	"github.com/medibook/medibook/pkg/pagination"
	"github.com/medibook/medibook/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	protected.POST("/appointments", h.Book, auth.RequireRole(auth.RolePatient))
	protected.POST("/appointments/cancel", h.Cancel,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	protected.POST("/appointments/complete", h.Complete, auth.RequireRole(auth.RoleDoctor))
	protected.GET("/appointments", h.List,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDoctorNotFound),
		errors.Is(err, ErrPatientNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrSlotTakenLedger),
		errors.Is(err, ErrDuplicateDailyBooking), errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrDoctorUnavailable):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingFields):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c echo.Context, err error) error {
	status := errStatus(err)
	if status == http.StatusInternalServerError {
		return respond.Error(c, status, "something went wrong")
	}
	return respond.Error(c, status, err.Error())
}

func actorFromContext(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Role: auth.RoleFromContext(ctx)}, nil
}

func (h *Handler) Book(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var body struct {
		DoctorID uuid.UUID `json:"doctor_id"`
		SlotDate string    `json:"slot_date"`
		SlotTime string    `json:"slot_time"`
	}
	if err := c.Bind(&body); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	a, err := h.svc.Book(c.Request().Context(), actor.ID, body.DoctorID, body.SlotDate, body.SlotTime)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, echo.Map{
		"message":        "appointment booked",
		"appointment_id": a.ID,
	})
}

func (h *Handler) Cancel(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var body struct {
		AppointmentID uuid.UUID `json:"appointment_id"`
	}
	if err := c.Bind(&body); err != nil || body.AppointmentID == uuid.Nil {
		return respond.Error(c, http.StatusBadRequest, "appointment_id is required")
	}

	if err := h.svc.Cancel(c.Request().Context(), body.AppointmentID, actor); err != nil {
		return fail(c, err)
	}
	return respond.Message(c, http.StatusOK, "appointment cancelled")
}

func (h *Handler) Complete(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var body struct {
		AppointmentID uuid.UUID `json:"appointment_id"`
	}
	if err := c.Bind(&body); err != nil || body.AppointmentID == uuid.Nil {
		return respond.Error(c, http.StatusBadRequest, "appointment_id is required")
	}

	if err := h.svc.Complete(c.Request().Context(), body.AppointmentID, actor.ID); err != nil {
		return fail(c, err)
	}
	return respond.Message(c, http.StatusOK, "appointment completed")
}

// List returns the caller's appointments: their own bookings for patients,
// their schedule for doctors, everything for admins.
func (h *Handler) List(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	var (
		appointments []*Appointment
		total        int
	)
	switch actor.Role {
	case auth.RolePatient:
		appointments, total, err = h.svc.ListByPatient(ctx, actor.ID, pg.Limit, pg.Offset)
	case auth.RoleDoctor:
		appointments, total, err = h.svc.ListByDoctor(ctx, actor.ID, pg.Limit, pg.Offset)
	default:
		appointments, total, err = h.svc.ListAll(ctx, pg.Limit, pg.Offset)
	}
	if err != nil {
		return fail(c, err)
	}

	if appointments == nil {
		appointments = []*Appointment{}
	}
	return respond.OK(c, http.StatusOK, echo.Map{
		"appointments": pagination.NewResponse(appointments, total, pg.Limit, pg.Offset),
	})
}
