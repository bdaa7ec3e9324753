package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/johnquangdev/script-workspace/errors"
	"github.com/johnquangdev/script-workspace/pkg/jwt"
)

func runAuth(t *testing.T, m *jwt.Manager, req *http.Request) (string, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var subject string
	handler := EchoAuth(m, nil)(func(c echo.Context) error {
		subject, _ = SubjectFromContext(c)
		return c.NoContent(http.StatusNoContent)
	})
	return subject, handler(c)
}

func TestEchoAuth(t *testing.T) {
	m := jwt.NewManager("secret", "script-workspace", time.Hour)
	token, _, err := m.Generate("tester", 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	header := httptest.NewRequest(http.MethodGet, "/v1/workspace", nil)
	header.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	if subject, err := runAuth(t, m, header); err != nil || subject != "tester" {
		t.Fatalf("header token: subject=%q err=%v", subject, err)
	}

	cookie := httptest.NewRequest(http.MethodGet, "/v1/workspace", nil)
	cookie.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	if subject, err := runAuth(t, m, cookie); err != nil || subject != "tester" {
		t.Fatalf("cookie token: subject=%q err=%v", subject, err)
	}

	ws := httptest.NewRequest(http.MethodGet, "/v1/workspace/events?access_token="+token, nil)
	ws.Header.Set(echo.HeaderUpgrade, "websocket")
	if subject, err := runAuth(t, m, ws); err != nil || subject != "tester" {
		t.Fatalf("query token: subject=%q err=%v", subject, err)
	}

	plainQuery := httptest.NewRequest(http.MethodGet, "/v1/workspace?access_token="+token, nil)
	_, err = runAuth(t, m, plainQuery)
	var appErr apperrors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_UNAUTHENTICATED {
		t.Fatalf("query token outside a websocket handshake must be ignored, got %v", err)
	}
}

func TestEchoAuth_InvalidToken(t *testing.T) {
	m := jwt.NewManager("secret", "script-workspace", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/v1/workspace", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer nope")
	_, err := runAuth(t, m, req)

	var appErr apperrors.AppError
	if !stdErrors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_AUTH_INVALID_TOKEN || appErr.HTTPCode != http.StatusUnauthorized {
		t.Fatalf("expected invalid token error got %v", err)
	}
}
