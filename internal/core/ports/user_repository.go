package ports

import (
	"context"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
)

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByRefreshToken resolves the user whose stored refresh token equals
	// the given value. Returns ErrUserNotFound when no user holds it.
	FindByRefreshToken(ctx context.Context, refreshToken string) (*domain.User, error)
	// FindByVerificationNonce resolves the user whose stored verification
	// token starts with "<nonce>::<purpose>::". Returns ErrUserNotFound on miss.
	FindByVerificationNonce(ctx context.Context, nonce string, purpose token.Purpose) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	ListNotApproved(ctx context.Context) ([]*domain.User, error)
}
