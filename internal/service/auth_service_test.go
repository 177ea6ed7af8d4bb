package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            4,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(testAuthConfig(), users)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Alice@Example.com",
		Password: "hunter22",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", result.User.Email)
	}
	if result.User.Role != domain.RoleUser {
		t.Errorf("role = %q, self-registration must always yield user", result.User.Role)
	}
	if result.Token == "" {
		t.Error("registration did not issue a token")
	}

	claims, err := svc.TokenManager().ParseToken(result.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != result.User.ID || claims.Role != domain.RoleUser {
		t.Errorf("claims = %+v, want user %d", claims, result.User.ID)
	}

	login, err := svc.Login(context.Background(), "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Errorf("login resolved user %d, want %d", login.User.ID, result.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(testAuthConfig(), users)

	input := RegisterInput{Email: "bob@example.com", Password: "secret12", Name: "Bob"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(testAuthConfig(), users)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "carol@example.com", Password: "correct-horse", Name: "Carol",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "carol@example.com", "wrong"); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "whatever"); err == nil {
		t.Fatal("expected error for unknown email")
	}
}

func TestEnsureDefaultAdminIdempotent(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(testAuthConfig(), users)
	logger := zap.NewNop()

	if err := svc.EnsureDefaultAdmin(context.Background(), logger); err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}
	admin, err := users.GetByEmail(context.Background(), "admin@example.com")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Errorf("seeded role = %q, want admin", admin.Role)
	}

	if err := svc.EnsureDefaultAdmin(context.Background(), logger); err != nil {
		t.Fatalf("second EnsureDefaultAdmin: %v", err)
	}
	all, _ := users.List(context.Background())
	if len(all) != 1 {
		t.Errorf("users after reseeding = %d, want 1", len(all))
	}
}
