package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

func newUserFixture(t *testing.T) (*UserService, *stubUserRepo, *stubMailer) {
	t.Helper()
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	return NewUserService(repo, mailer, "http://front.local/", zerolog.Nop()), repo, mailer
}

func seedUser(t *testing.T, repo *stubUserRepo, email, password string, admin, approved bool) *domain.User {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	user, err := repo.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Admin:        admin,
		Approved:     approved,
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return user
}

func TestUserService_IsAdmin(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	admin := seedUser(t, repo, "admin@example.com", "pass", true, true)
	plain := seedUser(t, repo, "plain@example.com", "pass", false, true)

	if ok, err := svc.IsAdmin(context.Background(), admin.ID); err != nil || !ok {
		t.Fatalf("expected admin, got %v %v", ok, err)
	}
	if ok, err := svc.IsAdmin(context.Background(), plain.ID); err != nil || ok {
		t.Fatalf("expected non-admin, got %v %v", ok, err)
	}
	if _, err := svc.IsAdmin(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ListNotApproved(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	admin := seedUser(t, repo, "admin@example.com", "pass", true, true)
	plain := seedUser(t, repo, "plain@example.com", "pass", false, true)
	pending := seedUser(t, repo, "pending@example.com", "pass", false, false)

	if _, err := svc.ListNotApproved(context.Background(), plain.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	users, err := svc.ListNotApproved(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 1 || users[0].ID != pending.ID {
		t.Fatalf("expected only the pending user, got %+v", users)
	}
}

func TestUserService_ApproveUser(t *testing.T) {
	svc, repo, mailer := newUserFixture(t)
	admin := seedUser(t, repo, "admin@example.com", "pass", true, true)
	plain := seedUser(t, repo, "plain@example.com", "pass", false, true)
	pending := seedUser(t, repo, "pending@example.com", "pass", false, false)

	if err := svc.ApproveUser(context.Background(), plain.ID, pending.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if err := svc.ApproveUser(context.Background(), admin.ID, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := svc.ApproveUser(context.Background(), admin.ID, pending.ID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	updated, err := repo.FindByID(context.Background(), pending.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if !updated.Approved {
		t.Fatalf("expected approved flag set")
	}

	mail, ok := mailer.last()
	if !ok || mail.kind != "approved" || mail.email != pending.Email {
		t.Fatalf("expected approval mail to %s, got %+v", pending.Email, mail)
	}
	if mail.url != "http://front.local/sign-in" {
		t.Fatalf("unexpected sign-in url %q", mail.url)
	}

	// Repeat approval is a conflict.
	if err := svc.ApproveUser(context.Background(), admin.ID, pending.ID); !errors.Is(err, domain.ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}
}

func TestUserService_GetMyInfo(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	user := seedUser(t, repo, "me@example.com", "pass", false, true)

	got, err := svc.GetMyInfo(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Email != user.Email || got.FirstName != "Test" {
		t.Fatalf("unexpected user: %+v", got)
	}

	if _, err := svc.GetMyInfo(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, repo, _ := newUserFixture(t)
	user := seedUser(t, repo, "me@example.com", "old-pass", false, true)

	if err := svc.ChangePassword(context.Background(), user.ID, "wrong", "new-pass"); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "old-pass", "new-pass"); err != nil {
		t.Fatalf("change failed: %v", err)
	}

	updated, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-pass")) != nil {
		t.Fatalf("new password does not verify")
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("old-pass")) == nil {
		t.Fatalf("old password still verifies")
	}
}
