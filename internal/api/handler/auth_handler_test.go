package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
)

type stubAuthService struct {
	registerFn      func(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error)
	loginFn         func(ctx context.Context, email, password string) (*ports.TokenPair, error)
	verifyEmailFn   func(ctx context.Context, rawToken string) error
	resendFn        func(ctx context.Context, email, password string) error
	refreshFn       func(ctx context.Context, refreshToken, accessToken string) (*ports.TokenPair, error)
	sendResetFn     func(ctx context.Context, email string) error
	resetPasswordFn func(ctx context.Context, rawToken, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error) {
	return s.registerFn(ctx, email, password, firstName, lastName)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	return s.verifyEmailFn(ctx, rawToken)
}

func (s *stubAuthService) ResendVerifyEmail(ctx context.Context, email, password string) error {
	return s.resendFn(ctx, email, password)
}

func (s *stubAuthService) RefreshToken(ctx context.Context, refreshToken, accessToken string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken, accessToken)
}

func (s *stubAuthService) SendResetPassword(ctx context.Context, email string) error {
	return s.sendResetFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	return s.resetPasswordFn(ctx, rawToken, newPassword)
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register(t *testing.T) {
	var gotEmail string
	svc := &stubAuthService{
		registerFn: func(_ context.Context, email, password, firstName, lastName string) (*domain.User, error) {
			gotEmail = email
			return &domain.User{ID: "user_1", Email: email, FirstName: firstName, LastName: lastName}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/register",
		`{"email":"u@example.com","password":"s3cret-pass","password_repeat":"s3cret-pass","first_name":"U","last_name":"Ser"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotEmail != "u@example.com" {
		t.Fatalf("service saw email %q", gotEmail)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"email":"u@example.com"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthHandler_Register_ValidationFailures(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := map[string]string{
		"bad email":         `{"email":"nope","password":"s3cret-pass","password_repeat":"s3cret-pass","first_name":"U","last_name":"S"}`,
		"short password":    `{"email":"u@example.com","password":"short","password_repeat":"short","first_name":"U","last_name":"S"}`,
		"password mismatch": `{"email":"u@example.com","password":"s3cret-pass","password_repeat":"different-pass","first_name":"U","last_name":"S"}`,
		"missing name":      `{"email":"u@example.com","password":"s3cret-pass","password_repeat":"s3cret-pass"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, _ := newJSONContext(t, http.MethodPost, "/auth/register", body)
			err := h.Register(c)
			var httpErr *echo.HTTPError
			if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_ConflictPassthrough(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, string, string, string, string) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewAuthHandler(svc)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/register",
		`{"email":"u@example.com","password":"s3cret-pass","password_repeat":"s3cret-pass","first_name":"U","last_name":"S"}`)

	if err := h.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken passthrough, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.TokenPair, error) {
			return &ports.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"email":"u@example.com","password":"s3cret-pass"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"accessToken":"access"`) || !strings.Contains(body, `"refreshToken":"refresh"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthHandler_Login_ErrorPassthrough(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.TokenPair, error) {
			return nil, domain.ErrEmailNotVerified
		},
	}
	h := NewAuthHandler(svc)

	c, _ := newJSONContext(t, http.MethodPost, "/auth/login",
		`{"email":"u@example.com","password":"s3cret-pass"}`)

	if err := h.Login(c); !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified passthrough, got %v", err)
	}
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	var gotToken string
	svc := &stubAuthService{
		verifyEmailFn: func(_ context.Context, rawToken string) error {
			gotToken = rawToken
			return nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(t, http.MethodPatch, "/auth/verify-email", `{"token":"nonce-1"}`)

	if err := h.VerifyEmail(c); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if rec.Code != http.StatusOK || gotToken != "nonce-1" {
		t.Fatalf("expected 200 with token nonce-1, got %d %q", rec.Code, gotToken)
	}
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	var gotRefresh, gotAccess string
	svc := &stubAuthService{
		refreshFn: func(_ context.Context, refreshToken, accessToken string) (*ports.TokenPair, error) {
			gotRefresh, gotAccess = refreshToken, accessToken
			return &ports.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(t, http.MethodPatch, "/auth/refresh-token", `{"refreshToken":"refresh-1"}`)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer stale-access")

	if err := h.RefreshToken(c); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotRefresh != "refresh-1" || gotAccess != "stale-access" {
		t.Fatalf("service saw refresh %q access %q", gotRefresh, gotAccess)
	}
}

func TestAuthHandler_RefreshToken_MissingHeader(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(t, http.MethodPatch, "/auth/refresh-token", `{"refreshToken":"refresh-1"}`)

	err := h.RefreshToken(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_ResetPassword_MismatchRejected(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newJSONContext(t, http.MethodPatch, "/auth/reset-password",
		`{"token":"nonce-1","password":"new-password","password_repeat":"other-password"}`)

	err := h.ResetPassword(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SendResetPassword(t *testing.T) {
	var gotEmail string
	svc := &stubAuthService{
		sendResetFn: func(_ context.Context, email string) error {
			gotEmail = email
			return nil
		},
	}
	h := NewAuthHandler(svc)

	c, rec := newJSONContext(t, http.MethodPost, "/auth/send-reset-password", `{"email":"u@example.com"}`)

	if err := h.SendResetPassword(c); err != nil {
		t.Fatalf("send reset failed: %v", err)
	}
	if rec.Code != http.StatusOK || gotEmail != "u@example.com" {
		t.Fatalf("expected 200 for u@example.com, got %d %q", rec.Code, gotEmail)
	}
}
