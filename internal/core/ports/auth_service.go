package ports

import (
	"context"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

// TokenPair is the response shape of login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService covers the credential and session lifecycle.
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	VerifyEmail(ctx context.Context, nonce string) error
	ResendVerifyEmail(ctx context.Context, email, password string) error
	RefreshToken(ctx context.Context, refreshToken, accessToken string) (*TokenPair, error)
	SendResetPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, nonce, newPassword string) error
}
