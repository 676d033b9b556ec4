package ports

import (
	"context"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

// UserService covers account administration and self-service.
type UserService interface {
	// IsAdmin resolves whether the user holds administrative privilege.
	IsAdmin(ctx context.Context, userID string) (bool, error)
	ListNotApproved(ctx context.Context, requesterID string) ([]*domain.User, error)
	ApproveUser(ctx context.Context, requesterID, targetID string) error
	GetMyInfo(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
