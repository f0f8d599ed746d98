package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"

	"github.com/onboard-hub/backend/internal/models"
)

const testSecret = "unit-test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}

func invoke(v *Verifier, authorization string) (*httptest.ResponseRecorder, models.Principal, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/uploads", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		principal models.Principal
		seen      bool
	)
	handler := v.Middleware()(func(c echo.Context) error {
		principal, seen = v.CurrentPrincipal(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, principal, seen
}

func TestValidTokenSetsPrincipal(t *testing.T) {
	v := NewVerifier(testSecret, true)
	token := signedToken(t, jwt.MapClaims{"sub": "u-42", "name": "Dana Kim"})

	rec, principal, seen := invoke(v, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !seen {
		t.Fatal("principal should be available to the handler")
	}
	if principal.ID != "u-42" || principal.DisplayName != "Dana Kim" || principal.Provider != "sso" {
		t.Errorf("principal = %+v", principal)
	}
}

func TestMissingTokenRejectedWhenRequired(t *testing.T) {
	v := NewVerifier(testSecret, true)
	rec, _, _ := invoke(v, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMissingTokenPassesWhenOptional(t *testing.T) {
	v := NewVerifier(testSecret, false)
	rec, _, seen := invoke(v, "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if seen {
		t.Error("no principal should be set for an anonymous request")
	}
	if p := v.PrincipalOrAnonymous(httptest.NewRequest(http.MethodGet, "/", nil).Context()); p != models.Anonymous {
		t.Errorf("anonymous fallback = %+v", p)
	}
}

func TestBadTokensRejected(t *testing.T) {
	v := NewVerifier(testSecret, false)

	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u-1"}).
		SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "Bearer not.a.token"},
		{"wrong key", "Bearer " + wrongKey},
		{"no subject", "Bearer " + signedToken(t, jwt.MapClaims{"name": "No Subject"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, _ := invoke(v, tt.value)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}
