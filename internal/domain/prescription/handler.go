package prescription

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/domain/appointment"
	"github.com/medibook/medibook/internal/platform/auth"
	"github.com/medibook/medibook/internal/platform/blobstore"
	"github.com/medibook/medibook/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	protected.POST("/prescriptions", h.Upload, auth.RequireRole(auth.RoleDoctor))
	protected.POST("/prescriptions/delete", h.Delete, auth.RequireRole(auth.RoleDoctor))
	protected.GET("/prescriptions", h.List,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	protected.GET("/prescriptions/:id/file", h.Download,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
	protected.GET("/appointments/:id/prescriptions", h.ListByAppointment,
		auth.RequireRole(auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin))
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAppointmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAppointmentNotCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrMissingFile), errors.Is(err, blobstore.ErrMissingFileName),
		errors.Is(err, blobstore.ErrInvalidContentType):
		return http.StatusBadRequest
	case errors.Is(err, blobstore.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
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

// Upload takes a multipart form with an appointment_id field, a file part
// named "file" and an optional notes field.
func (h *Handler) Upload(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	apptID, err := uuid.Parse(c.FormValue("appointment_id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "appointment_id is required")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, ErrMissingFile)
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer src.Close()

	p, err := h.svc.Upload(c.Request().Context(), actor.ID, UploadInput{
		AppointmentID: apptID,
		FileName:      fh.Filename,
		ContentType:   fh.Header.Get(echo.HeaderContentType),
		Content:       src,
		Notes:         c.FormValue("notes"),
	})
	if err != nil {
		return fail(c, err)
	}
	return respond.OK(c, http.StatusCreated, echo.Map{
		"message":      "prescription uploaded",
		"prescription": p,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var body struct {
		PrescriptionID uuid.UUID `json:"prescription_id"`
	}
	if err := c.Bind(&body); err != nil || body.PrescriptionID == uuid.Nil {
		return respond.Error(c, http.StatusBadRequest, "prescription_id is required")
	}

	if err := h.svc.Delete(c.Request().Context(), actor.ID, body.PrescriptionID); err != nil {
		return fail(c, err)
	}
	return respond.Message(c, http.StatusOK, "prescription deleted")
}

// List returns the caller's prescriptions: grouped per doctor for patients,
// a flat upload history for doctors.
func (h *Handler) List(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}
	ctx := c.Request().Context()

	if actor.Role == auth.RoleDoctor {
		prescriptions, err := h.svc.ListForDoctor(ctx, actor.ID)
		if err != nil {
			return fail(c, err)
		}
		if prescriptions == nil {
			prescriptions = []*Prescription{}
		}
		return respond.OK(c, http.StatusOK, echo.Map{"prescriptions": prescriptions})
	}

	groups, err := h.svc.ListForPatient(ctx, actor.ID)
	if err != nil {
		return fail(c, err)
	}
	if groups == nil {
		groups = []DoctorPrescriptions{}
	}
	return respond.OK(c, http.StatusOK, echo.Map{"doctors": groups})
}

func (h *Handler) Download(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return respond.Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respond.Error(c, http.StatusBadRequest, "invalid prescription id")
	}

	p, rc, err := h.svc.Download(c.Request().Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", p.FileName))
	return c.Stream(http.StatusOK, "application/pdf", rc)
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

	prescriptions, err := h.svc.ListByAppointment(c.Request().Context(), actor, apptID)
	if err != nil {
		return fail(c, err)
	}
	if prescriptions == nil {
		prescriptions = []*Prescription{}
	}
	return respond.OK(c, http.StatusOK, echo.Map{"prescriptions": prescriptions})
}
