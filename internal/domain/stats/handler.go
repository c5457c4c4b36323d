package stats

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	protected.GET("/admin/dashboard", h.AdminDashboard, auth.RequireRole(auth.RoleAdmin))
	protected.GET("/doctors/me/dashboard", h.DoctorDashboard, auth.RequireRole(auth.RoleDoctor))
}

func (h *Handler) AdminDashboard(c echo.Context) error {
	dash, err := h.svc.AdminDashboard(c.Request().Context())
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "something went wrong")
	}
	return respond.OK(c, http.StatusOK, echo.Map{"dashboard": dash})
}

func (h *Handler) DoctorDashboard(c echo.Context) error {
	doctorID, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}
	dash, err := h.svc.DoctorDashboard(c.Request().Context(), doctorID)
	if err != nil {
		return respond.Error(c, http.StatusInternalServerError, "something went wrong")
	}
	return respond.OK(c, http.StatusOK, echo.Map{"dashboard": dash})
}
