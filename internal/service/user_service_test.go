package service

import (
	"context"
	"testing"

	"github.com/spec-kit/helpdesk/internal/domain"
)

func TestUserListRequiresAdmin(t *testing.T) {
	requester := newTestUser(1, domain.RoleUser)
	admin := newTestUser(2, domain.RoleAdmin)
	users := newFakeUserRepo(requester, admin)
	svc := NewUserService(testAuthConfig(), users)

	if _, err := svc.List(context.Background(), requester); err == nil {
		t.Fatal("expected access denied for non-admin list")
	}
	all, err := svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("users = %d, want 2", len(all))
	}
}

func TestUserGetSelfOrAdmin(t *testing.T) {
	requester := newTestUser(1, domain.RoleUser)
	other := newTestUser(2, domain.RoleUser)
	admin := newTestUser(3, domain.RoleAdmin)
	users := newFakeUserRepo(requester, other, admin)
	svc := NewUserService(testAuthConfig(), users)

	if _, err := svc.Get(context.Background(), requester, requester.ID); err != nil {
		t.Fatalf("self Get: %v", err)
	}
	if _, err := svc.Get(context.Background(), requester, other.ID); err == nil {
		t.Fatal("expected access denied reading another profile")
	}
	if _, err := svc.Get(context.Background(), admin, other.ID); err != nil {
		t.Fatalf("admin Get: %v", err)
	}
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	requester := newTestUser(1, domain.RoleUser)
	admin := newTestUser(2, domain.RoleAdmin)
	users := newFakeUserRepo(requester, admin)
	svc := NewUserService(testAuthConfig(), users)

	input := UserCreateInput{Email: "dave@example.com", Password: "secret12", Name: "Dave", Role: domain.RoleAdmin}
	if _, err := svc.Create(context.Background(), requester, input); err == nil {
		t.Fatal("expected access denied for non-admin create")
	}

	created, err := svc.Create(context.Background(), admin, input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Role != domain.RoleAdmin {
		t.Errorf("role = %q, want admin", created.Role)
	}
}

func TestUserUpdateRoleRules(t *testing.T) {
	requester := newTestUser(1, domain.RoleUser)
	admin := newTestUser(2, domain.RoleAdmin)
	users := newFakeUserRepo(requester, admin)
	svc := NewUserService(testAuthConfig(), users)

	adminRole := domain.RoleAdmin
	name := "Renamed"
	if err := svc.Update(context.Background(), requester, requester.ID, UserPatch{
		Name: &name,
		Role: &adminRole,
	}); err != nil {
		t.Fatalf("self Update: %v", err)
	}
	stored, _ := users.GetByID(context.Background(), requester.ID)
	if stored.Role != domain.RoleUser {
		t.Error("non-admin escalated own role")
	}
	if stored.Name != name {
		t.Error("name change from same patch was dropped")
	}

	if err := svc.Update(context.Background(), admin, requester.ID, UserPatch{Role: &adminRole}); err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	stored, _ = users.GetByID(context.Background(), requester.ID)
	if stored.Role != domain.RoleAdmin {
		t.Error("admin role change not applied")
	}
}
