package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runAuth(t *testing.T, target, header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"sub":  "walker-1",
		"role": RoleWalker,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, c, called := runAuth(t, "/", "Bearer "+token)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected next to run, got %d", rec.Code)
	}
	if c.Get(ContextSubject) != "walker-1" {
		t.Fatalf("subject not set: %v", c.Get(ContextSubject))
	}
	if c.Get(ContextRole) != RoleWalker {
		t.Fatalf("role not set: %v", c.Get(ContextRole))
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	token := sign(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{"role": RoleWalker})

	rec, _, called := runAuth(t, "/stream?access_token="+token, "")
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected query token accepted, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	expired := sign(t, jwt.SigningMethodHS256, []byte("secret"), jwt.MapClaims{
		"role": RoleAdmin,
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"role": RoleAdmin})
	wrongAlg := sign(t, jwt.SigningMethodHS512, []byte("secret"), jwt.MapClaims{"role": RoleAdmin})

	tests := map[string]string{
		"missing header":  "",
		"invalid format":  "Token abc",
		"empty bearer":    "Bearer ",
		"garbage":         "Bearer not-a-token",
		"expired":         "Bearer " + expired,
		"wrong key":       "Bearer " + wrongKey,
		"wrong algorithm": "Bearer " + wrongAlg,
	}
	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec, _, called := runAuth(t, "/", header)
			if called {
				t.Fatal("should not reach next")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
