package question

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/domain/appointment"
	"github.com/medibook/medibook/internal/platform/auth"
	"github.com/medibook/medibook/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	protected.POST("/questions", h.Ask, auth.RequireRole(auth.RolePatient))
	protected.POST("/questions/answer", h.Answer, auth.RequireRole(auth.RoleDoctor))
	protected.GET("/questions", h.List,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	protected.GET("/questions/:id/thread", h.Thread,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	protected.GET("/appointments/:id/questions", h.ListByAppointment,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, ErrParentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAppointmentNotCompleted), errors.Is(err, ErrAlreadyAnswered):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrParentMismatch):
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

func actorFromContext(c echo.Context) (appointment.Actor, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return appointment.Actor{}, err
	}
	return appointment.Actor{ID: id, Role: auth.RoleFromContext(ctx)}, nil
}

func (h *Handler) Ask(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var in AskInput
	if err := c.Bind(&in); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	q, err := h.svc.Ask(c.Request().Context(), actor.ID, in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, echo.Map{
		"message":  "question submitted",
		"question": q,
	})
}

func (h *Handler) Answer(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var in AnswerInput
	if err := c.Bind(&in); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	q, err := h.svc.Answer(c.Request().Context(), actor.ID, in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{
		"message":  "question answered",
		"question": q,
	})
}

// List returns the caller's questions: threads across appointments for
// patients, the per-appointment inbox for doctors.
func (h *Handler) List(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}
	ctx := c.Request().Context()

	if actor.Role == auth.RoleDoctor {
		inbox, err := h.svc.Inbox(ctx, actor.ID)
		if err != nil {
			return fail(c, err)
		}
		if inbox == nil {
			inbox = []AppointmentThreads{}
		}
		return respond.OK(c, http.StatusOK, echo.Map{"appointments": inbox})
	}

	threads, err := h.svc.ListForPatient(ctx, actor.ID)
	if err != nil {
		return fail(c, err)
	}
	if threads == nil {
		threads = []Thread{}
	}
	return respond.OK(c, http.StatusOK, echo.Map{"threads": threads})
}

func (h *Handler) Thread(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid question id")
	}

	thread, err := h.svc.Thread(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"thread": thread})
}

func (h *Handler) ListByAppointment(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	apptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid appointment id")
	}

	threads, err := h.svc.ListByAppointment(c.Request().Context(), actor, apptID)
	if err != nil {
		return fail(c, err)
	}
	if threads == nil {
		threads = []Thread{}
	}
	return respond.OK(c, http.StatusOK, echo.Map{"threads": threads})
}
