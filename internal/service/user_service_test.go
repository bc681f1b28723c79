package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/testutil"
)

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("only admins manage users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		req := request.CreateUserRequest{Username: "carol", Password: "long-enough-password"}

		_, err := svc.CreateUser(ctx, testutil.Actor(model.RoleManager), req)
		if !errors.Is(err, apperrors.ErrPermissionDenied) {
			t.Fatalf("Expected ErrPermissionDenied, got %v", err)
		}

		user, err := svc.CreateUser(ctx, testutil.Actor(model.RoleAdmin), req)
		if err != nil {
			t.Fatalf("CreateUser() returned unexpected error: %v", err)
		}
		if user.Role != model.RoleManager || !user.IsActive {
			t.Errorf("Expected active MANAGER by default, got %s active=%v", user.Role, user.IsActive)
		}
		if user.PasswordHash == "" || user.PasswordHash == req.Password {
			t.Error("Expected password to be hashed")
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		testutil.NewUser().WithUsername("carol").Build(t, db)

		_, err := svc.CreateUser(ctx, testutil.Actor(model.RoleAdmin), request.CreateUserRequest{
			Username: "carol",
			Password: "long-enough-password",
		})
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestUserService(t, db)
	testutil.NewUser().Build(t, db)
	testutil.NewUser().Inactive().Build(t, db)
	admin := testutil.Actor(model.RoleAdmin)

	active, err := svc.ListUsers(ctx, admin, false)
	if err != nil {
		t.Fatalf("ListUsers() returned unexpected error: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("Expected 1 active user, got %d", len(active))
	}

	all, err := svc.ListUsers(ctx, admin, true)
	if err != nil {
		t.Fatalf("ListUsers() returned unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 users, got %d", len(all))
	}

	_, err = svc.ListUsers(ctx, testutil.Actor(model.RoleViewer), true)
	if !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied, got %v", err)
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("changes role and profile", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		user := testutil.NewUser().Build(t, db)

		role := string(model.RoleViewer)
		first := "<i>Carol</i>"
		updated, err := svc.UpdateUser(ctx, testutil.Actor(model.RoleAdmin), user.ID, request.UpdateUserRequest{
			Role:      &role,
			FirstName: &first,
		})
		if err != nil {
			t.Fatalf("UpdateUser() returned unexpected error: %v", err)
		}
		if updated.Role != model.RoleViewer || updated.FirstName != "Carol" {
			t.Errorf("Expected sanitized VIEWER Carol, got %s %q", updated.Role, updated.FirstName)
		}

		got, err := svc.GetUser(ctx, testutil.Actor(model.RoleAdmin), user.ID)
		if err != nil {
			t.Fatalf("GetUser() returned unexpected error: %v", err)
		}
		if got.Role != model.RoleViewer {
			t.Errorf("Expected persisted VIEWER, got %s", got.Role)
		}
	})

	t.Run("last active admin cannot be demoted or deactivated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		admin := testutil.NewUser().WithRole(model.RoleAdmin).Build(t, db)
		testutil.NewUser().WithRole(model.RoleAdmin).Inactive().Build(t, db)

		role := string(model.RoleManager)
		_, err := svc.UpdateUser(ctx, testutil.Actor(model.RoleAdmin), admin.ID, request.UpdateUserRequest{Role: &role})
		if !errors.Is(err, apperrors.ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin on demotion, got %v", err)
		}

		inactive := false
		_, err = svc.UpdateUser(ctx, testutil.Actor(model.RoleAdmin), admin.ID, request.UpdateUserRequest{IsActive: &inactive})
		if !errors.Is(err, apperrors.ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin on deactivation, got %v", err)
		}

		got, err := svc.GetUser(ctx, testutil.Actor(model.RoleAdmin), admin.ID)
		if err != nil {
			t.Fatalf("GetUser() returned unexpected error: %v", err)
		}
		if got.Role != model.RoleAdmin || !got.IsActive {
			t.Errorf("Expected admin to stay active ADMIN, got %s active=%v", got.Role, got.IsActive)
		}

		first := "Root"
		if _, err := svc.UpdateUser(ctx, testutil.Actor(model.RoleAdmin), admin.ID, request.UpdateUserRequest{FirstName: &first}); err != nil {
			t.Errorf("Expected profile update on last admin to succeed, got %v", err)
		}
	})

	t.Run("admin can be demoted while another remains", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)
		admin := testutil.NewUser().WithRole(model.RoleAdmin).Build(t, db)
		testutil.NewUser().WithRole(model.RoleAdmin).Build(t, db)

		role := string(model.RoleManager)
		updated, err := svc.UpdateUser(ctx, testutil.Actor(model.RoleAdmin), admin.ID, request.UpdateUserRequest{Role: &role})
		if err != nil {
			t.Fatalf("UpdateUser() returned unexpected error: %v", err)
		}
		if updated.Role != model.RoleManager {
			t.Errorf("Expected MANAGER, got %s", updated.Role)
		}
	})

	t.Run("not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestUserService(t, db)

		inactive := false
		_, err := svc.UpdateUser(ctx, testutil.Actor(model.RoleAdmin), testutil.MakeID(), request.UpdateUserRequest{IsActive: &inactive})
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			t.Errorf("Expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserService_SetPassword(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	users := testutil.NewTestUserService(t, db)
	authSvc := testutil.NewTestAuthService(t, db)
	user := testutil.NewUser().WithUsername("dave").Build(t, db)

	if _, err := authSvc.Login(ctx, request.LoginRequest{Username: "dave", Password: testutil.DefaultPassword}); err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}

	err := users.SetPassword(ctx, testutil.Actor(model.RoleAdmin), user.ID, request.SetPasswordRequest{Password: "a-brand-new-secret"})
	if err != nil {
		t.Fatalf("SetPassword() returned unexpected error: %v", err)
	}
	testutil.AssertRowCount(t, db, "sessions", 0)

	_, err = authSvc.Login(ctx, request.LoginRequest{Username: "dave", Password: testutil.DefaultPassword})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("Expected old password to fail, got %v", err)
	}
	if _, err := authSvc.Login(ctx, request.LoginRequest{Username: "dave", Password: "a-brand-new-secret"}); err != nil {
		t.Errorf("Expected new password to work, got %v", err)
	}

	err = users.SetPassword(ctx, testutil.Actor(model.RoleAdmin), testutil.MakeID(), request.SetPasswordRequest{Password: "a-brand-new-secret"})
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
