package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kbediako/rentpadi/internal/repo/memory"
	redrepo "github.com/kbediako/rentpadi/internal/repo/redis"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
)

func TestRegisterThenLogin(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	regRes, err := svc.Register(ctx, "0244123456", "Ama Mensah", "s3cret-pass", "USER")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if regRes.Me.Phone != "+233244123456" {
		t.Fatalf("phone not normalized, got %q", regRes.Me.Phone)
	}

	if _, err := svc.Register(ctx, "+233244123456", "Other Person", "another-pass", "USER"); !errors.Is(err, authsvc.ErrPhoneTaken) {
		t.Fatalf("duplicate phone should be rejected, got err=%v", err)
	}

	loginRes, err := svc.Login(ctx, "0244123456", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginRes.Me.ID != regRes.Me.ID {
		t.Fatalf("login resolved wrong user: got %d want %d", loginRes.Me.ID, regRes.Me.ID)
	}

	if _, err := svc.Login(ctx, "0244123456", "wrong-pass"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("wrong password should be invalid credentials, got err=%v", err)
	}
	if _, err := svc.Login(ctx, "0200000000", "s3cret-pass"); !errors.Is(err, authsvc.ErrInvalidCredentials) {
		t.Fatalf("unknown phone should be invalid credentials, got err=%v", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Register(ctx, "0551234567", "Kofi Asante", "s3cret-pass", "USER")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	refreshRes, err := svc.Refresh(ctx, loginRes.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if refreshRes.RefreshToken == loginRes.RefreshToken {
		t.Fatalf("refresh token was not rotated")
	}

	if _, err := svc.Refresh(ctx, loginRes.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("old refresh token should be unauthorized, got err=%v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, refreshRes.AccessToken); err != nil {
		t.Fatalf("new access token validation failed: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	loginRes, err := svc.Register(ctx, "0209876543", "Esi Owusu", "s3cret-pass", "LANDLORD")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}
	if claims.Role != "LANDLORD" {
		t.Fatalf("unexpected role in claims: %q", claims.Role)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, loginRes.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Register(ctx, "12345", "Short Phone", "s3cret-pass", "USER"); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("bad phone should be invalid input, got err=%v", err)
	}
	if _, err := svc.Register(ctx, "0244123456", "Short Pass", "short", "USER"); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("short password should be invalid input, got err=%v", err)
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	users := memory.NewUserRepo()
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, users, sessions, 45*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}
