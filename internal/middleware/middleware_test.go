package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCustomErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantBody string
		wantType string
	}{
		{"api http error", "/api/payment-options/create", echo.NewHTTPError(http.StatusBadRequest, "Missing required fields"), 400, `{"error":"Missing required fields"}`, echo.MIMEApplicationJSON},
		{"api internal error", "/api/payment-status", errors.New("boom"), 500, `{"error":"boom"}`, echo.MIMEApplicationJSON},
		{"webhook plain text", "/webhook", echo.NewHTTPError(http.StatusBadRequest, "Invalid signature"), 400, "Invalid signature", echo.MIMETextPlain},
		{"success page plain text", "/api/payment-success", echo.NewHTTPError(http.StatusBadRequest, "Error: Missing parameters"), 400, "Error: Missing parameters", echo.MIMETextPlain},
		{"not found default message", "/nope", echo.ErrNotFound, 404, `{"error":"Not Found"}`, echo.MIMEApplicationJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			CustomErrorHandler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if got := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(got, tt.wantType) {
				t.Errorf("content type = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestRequireAdminKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		header   string
		wantCode int
	}{
		{"valid key", "s3cret", "Bearer s3cret", http.StatusOK},
		{"wrong key", "s3cret", "Bearer nope", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"no key configured", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			e.HTTPErrorHandler = CustomErrorHandler
			e.GET("/api/admin/ping", func(c echo.Context) error {
				return c.String(http.StatusOK, "pong")
			}, RequireAdminKey(tt.key))

			req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}
