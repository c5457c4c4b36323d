package admin

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public *echo.Group) {
	public.POST("/admin/login", h.Login)
}

func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid request body")
	}

	token, err := h.svc.Login(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return respond.Error(c, http.StatusUnauthorized, err.Error())
		}
		return respond.Error(c, http.StatusInternalServerError, "something went wrong")
	}
	return respond.OK(c, http.StatusOK, echo.Map{"token": token})
}
