package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/vendopos/api/internal/auth"
	"github.com/vendopos/api/internal/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	h := middleware.Authenticate("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestAuthenticate_BadFormat(t *testing.T) {
	h := middleware.Authenticate("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	secret := "secret"
	token, err := auth.GenerateToken(secret, uuid.New(), uuid.New(), "CASHIER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotClaims *auth.Claims
	h := middleware.Authenticate(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = middleware.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if gotClaims == nil {
		t.Fatal("claims not set in context")
	}
}

func TestRequireTenant_Mismatch(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), TenantID: uuid.New(), Role: "CASHIER"}

	h := middleware.RequireTenant(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/tenants/"+uuid.New().String()+"/sales", nil)
	req.SetPathValue("tid", uuid.New().String())
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}

func TestRequireTenant_OwnerBypass(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), TenantID: uuid.New(), Role: "OWNER"}

	h := middleware.RequireTenant(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/tenants/x/sales", nil)
	req.SetPathValue("tid", uuid.New().String())
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	claims := &auth.Claims{UserID: uuid.New(), TenantID: uuid.New(), Role: "CASHIER"}

	h := middleware.RequireRole("OWNER", "MANAGER")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
}
