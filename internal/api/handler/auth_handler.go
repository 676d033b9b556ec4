package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LessonsQueue/QueueManager/internal/api/metrics"
	"github.com/LessonsQueue/QueueManager/internal/api/middleware"
	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and sends the verification email.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.Inc()
	return c.JSON(http.StatusCreated, user)
}

// Login authenticates a user and returns an access/refresh token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.TokenPair
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pair, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, pair)
}

// VerifyEmail consumes an email verification token.
//
// @Summary      Verify email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyEmailRequest  true  "Verification token"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/verify-email [patch]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "email is verified"})
}

// ResendVerifyEmail reissues the verification token for an unverified account.
//
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Account credentials"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /auth/resend-verify-email [post]
func (h *AuthHandler) ResendVerifyEmail(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResendVerifyEmail(c.Request().Context(), req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "check your email"})
}

// RefreshToken rotates the session. The refresh token travels in the body;
// the (possibly expired) access token in the Authorization header.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshTokenRequest  true  "Refresh token"
// @Success      200   {object}  ports.TokenPair
// @Failure      401   {object}  errorResponse
// @Router       /auth/refresh-token [patch]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req refreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	accessToken := middleware.AccessToken(c)
	if accessToken == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	pair, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken, accessToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// SendResetPassword issues a password reset token and emails the reset link.
//
// @Summary      Request password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      sendResetPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/send-reset-password [post]
func (h *AuthHandler) SendResetPassword(c echo.Context) error {
	var req sendResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.SendResetPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "check your email"})
}

// ResetPassword consumes a reset token and replaces the password.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/reset-password [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password is changed"})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified"
	case errors.Is(err, domain.ErrNotApproved):
		return "unapproved"
	case errors.Is(err, domain.ErrInvalidPassword):
		return "bad_password"
	default:
		return "error"
	}
}
