package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return body
}

func TestOK_MergesPayload(t *testing.T) {
	c, rec := newContext()

	if err := OK(c, http.StatusOK, echo.Map{"appointments": []string{"a"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := decode(t, rec)
	if body["success"] != true {
		t.Error("expected success true")
	}
	if _, ok := body["appointments"]; !ok {
		t.Error("expected payload field at top level")
	}
}

func TestError(t *testing.T) {
	c, rec := newContext()

	if err := Error(c, http.StatusNotFound, "doctor not found"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	body := decode(t, rec)
	if body["success"] != false {
		t.Error("expected success false")
	}
	if body["message"] != "doctor not found" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	c, rec := newContext()

	HTTPErrorHandler(echo.NewHTTPError(http.StatusUnauthorized, "missing token"), c)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["message"] != "missing token" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestHTTPErrorHandler_PlainError(t *testing.T) {
	c, rec := newContext()

	HTTPErrorHandler(errors.New("boom"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["message"] != "internal server error" {
		t.Errorf("internal details must not leak, got: %v", body["message"])
	}
}
