package doctor

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

// RegisterRoutes mounts doctor routes. Login, the public listing and the
// slot calendar live on the public group; everything else requires a token.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/doctors/login", h.Login)
	public.GET("/doctors", h.ListPublic)
	public.GET("/doctors/:id/slots", h.BookedSlots)

	me := protected.Group("/doctors/me", auth.RequireRole(auth.RoleDoctor))
	me.GET("", h.Profile)
	me.PUT("", h.UpdateProfile)
	me.POST("/availability", h.ChangeAvailability)

	admin := protected.Group("/admin/doctors", auth.RequireRole(auth.RoleAdmin))
	admin.POST("", h.Create)
	admin.GET("", h.ListAdmin)
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
		errors.Is(err, ErrWeakPassword):
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

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	token, d, err := h.svc.Login(c.Request().Context(), body.Email, body.Password)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"token": token, "doctor": d.Public()})
}

func (h *Handler) ListPublic(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return fail(c, err)
	}

	profiles := make([]PublicProfile, 0, len(doctors))
	for _, d := range doctors {
		profiles = append(profiles, d.Public())
	}
	return respond.OK(c, http.StatusOK, echo.Map{
		"doctors": pagination.NewResponse(profiles, total, pg.Limit, pg.Offset),
	})
}

func (h *Handler) BookedSlots(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid doctor id")
	}

	ledger, err := h.svc.BookedSlots(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"slots_booked": ledger})
}

func (h *Handler) Profile(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	d, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"doctor": d})
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

	d, err := h.svc.UpdateProfile(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"doctor": d})
}

func (h *Handler) ChangeAvailability(c echo.Context) error {
	id, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	d, err := h.svc.ChangeAvailability(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{"available": d.Available})
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	d, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, echo.Map{"doctor": d})
}

func (h *Handler) ListAdmin(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusOK, echo.Map{
		"doctors": pagination.NewResponse(doctors, total, pg.Limit, pg.Offset),
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid doctor id")
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return fail(c, err)
	}
	return respond.Message(c, http.StatusOK, "doctor deleted")
}
