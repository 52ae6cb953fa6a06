package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kbediako/rentpadi/internal/repo/memory"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
)

func newAuthServiceForMiddlewareTest() *authsvc.Service {
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	return authsvc.NewService(jwtManager, memory.NewUserRepo(), memory.NewSessionRepo(), 45*24*time.Hour)
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	authService := newAuthServiceForMiddlewareTest()

	loginRes, err := authService.Register(context.Background(), "0244123456", "Ama Mensah", "s3cret-pass", "USER")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	mw := AuthMiddleware(authService, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me/entitlements", nil)
	req.Header.Set("Authorization", "Bearer "+loginRes.AccessToken)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != loginRes.Me.ID {
			t.Fatalf("identity user mismatch: got %d want %d", identity.UserID, loginRes.Me.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(newAuthServiceForMiddlewareTest(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me/entitlements", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	mw := AuthMiddleware(newAuthServiceForMiddlewareTest(), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/me/entitlements", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not be called with an invalid token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if _, ok := extractBearerToken(""); ok {
		t.Fatalf("empty header should not parse")
	}
	if _, ok := extractBearerToken("Basic abc"); ok {
		t.Fatalf("non-bearer scheme should not parse")
	}
	token, ok := extractBearerToken("bearer abc.def.ghi")
	if !ok || token != "abc.def.ghi" {
		t.Fatalf("case-insensitive bearer parse failed: %q ok=%v", token, ok)
	}
}
