package patient

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

func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/patients/register", h.Register)
	public.POST("/patients/login", h.Login)

	me := protected.Group("/patients/me", auth.RequireRole(auth.RolePatient))
	me.GET("", h.Profile)
	me.PUT("", h.UpdateProfile)

	admin := protected.Group("/admin/patients", auth.RequireRole(auth.RoleAdmin))
	admin.POST("", h.AdminCreate)
	admin.GET("", h.List)
	admin.DELETE("/:id", h.Delete)
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrHasActiveAppointments):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword), errors.Is(err, ErrAllergyMismatch):
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

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	token, p, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, echo.Map{"token": token, "patient": p})
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	token, p, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"token": token, "patient": p})
}

func (h *Handler) Profile(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"patient": p})
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var in UpdateProfileInput
	if err := c.Bind(&in); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.UpdateProfile(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"patient": p})
}

func (h *Handler) AdminCreate(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	p, err := h.svc.AdminCreate(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, echo.Map{"patient": p})
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{
		"patients": pagination.NewResponse(patients, total, pg.Limit, pg.Offset),
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid patient id")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return respond.Message(c, http.StatusOK, "patient deleted")
}
