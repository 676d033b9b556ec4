package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
)

// UserService implements account administration (approval) and self-service.
// It is also the permission oracle consulted by QueueService.
type UserService struct {
	users       ports.UserRepository
	mailer      ports.Mailer
	frontendURL string
	log         zerolog.Logger
}

func NewUserService(users ports.UserRepository, mailer ports.Mailer, frontendURL string, log zerolog.Logger) *UserService {
	return &UserService{
		users:       users,
		mailer:      mailer,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		log:         log,
	}
}

// IsAdmin resolves whether the user holds administrative privilege.
func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.Admin, nil
}

// ListNotApproved returns accounts awaiting administrator approval.
func (s *UserService) ListNotApproved(ctx context.Context, requesterID string) ([]*domain.User, error) {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return nil, err
	}
	return s.users.ListNotApproved(ctx)
}

// ApproveUser flips the approved flag and notifies the user by email.
func (s *UserService) ApproveUser(ctx context.Context, requesterID, targetID string) error {
	if err := s.requireAdmin(ctx, requesterID); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.Approved {
		return domain.ErrAlreadyApproved
	}

	approved := true
	updated, err := s.users.Update(ctx, targetID, domain.UserUpdate{Approved: &approved})
	if err != nil {
		return err
	}

	s.mailer.SendApproved(ctx, updated.Email, s.frontendURL+"/sign-in", updated.FirstName, updated.LastName)
	s.log.Info().Str("user_id", targetID).Str("approved_by", requesterID).Msg("user approved")
	return nil
}

// GetMyInfo returns the requester's own record.
func (s *UserService) GetMyInfo(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ChangePassword replaces the password hash after checking the old password.
// The binding hash embedded in outstanding access tokens stops matching
// afterwards, so they can no longer be used to refresh the session.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !verifyPassword(user.PasswordHash, oldPassword) {
		return domain.ErrInvalidPassword
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.users.Update(ctx, userID, domain.UserUpdate{PasswordHash: &hash}); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *UserService) requireAdmin(ctx context.Context, userID string) error {
	isAdmin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrForbidden
	}
	return nil
}
