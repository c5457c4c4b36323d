package prescription

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medibook/medibook/internal/platform/auth"
)

func withActor(req *http.Request, actorID uuid.UUID, role string) *http.Request {
	ctx := req.Context()
	ctx = context.WithValue(ctx, auth.UserIDKey, actorID.String())
	ctx = context.WithValue(ctx, auth.UserRoleKey, role)
	return req.WithContext(ctx)
}

func multipartUpload(t *testing.T, apptID uuid.UUID, fileName, contentType, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("appointment_id", apptID.String()); err != nil {
		t.Fatalf("writing field: %v", err)
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("creating part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestHandlerUpload(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)

	body, contentType := multipartUpload(t, f.apptID, "rx.pdf", "application/pdf", "%PDF-1.4 test")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/prescriptions", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	req = withActor(req, f.doctorID, auth.RoleDoctor)

	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var env map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if env["success"] != true || env["prescription"] == nil {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
}

func TestHandlerUpload_NonPDFIs400(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.svc)

	body, contentType := multipartUpload(t, f.apptID, "notes.txt", "text/plain", "plain text")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/prescriptions", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	req = withActor(req, f.doctorID, auth.RoleDoctor)

	rec := httptest.NewRecorder()
	if err := h.Upload(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDelete_ForbiddenForOtherDoctor(t *testing.T) {
	f := newFixture(t)
	p := f.upload(t, "rx.pdf")
	h := NewHandler(f.svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/prescriptions/delete",
		strings.NewReader(`{"prescription_id":"`+p.ID.String()+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req = withActor(req, uuid.New(), auth.RoleDoctor)

	rec := httptest.NewRecorder()
	if err := h.Delete(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDownload(t *testing.T) {
	f := newFixture(t)
	p := f.upload(t, "rx.pdf")
	h := NewHandler(f.svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/prescriptions/"+p.ID.String()+"/file", nil)
	req = withActor(req, f.patientID, auth.RolePatient)

	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())
	if err := h.Download(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, "application/pdf") {
		t.Fatalf("content type = %q, want application/pdf", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty download body")
	}
}
