package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/LessonsQueue/QueueManager/internal/core/ports"
)

type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type approveUserRequest struct {
	ID string `json:"id" validate:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ListNotApproved returns accounts awaiting approval. Admin-only.
//
// @Summary      List not approved users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      403  {object}  errorResponse
// @Router       /users/not-approved [get]
func (h *UserHandler) ListNotApproved(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListNotApproved(c.Request().Context(), requesterID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Approve flips the approved flag on a pending account. Admin-only.
//
// @Summary      Approve a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      approveUserRequest  true  "Target user id"
// @Success      200   {object}  messageResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/approve [post]
func (h *UserHandler) Approve(c echo.Context) error {
	requesterID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req approveUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ApproveUser(c.Request().Context(), requesterID, req.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user " + req.ID + " is approved"})
}

// Me returns the caller's own record.
//
// @Summary      Current user info
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetMyInfo(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Router       /users/change-pass [patch]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ChangePassword(c.Request().Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "your password is changed"})
}
