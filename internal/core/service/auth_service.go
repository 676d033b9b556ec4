package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
	"github.com/LessonsQueue/QueueManager/internal/core/ports"
	"github.com/LessonsQueue/QueueManager/internal/core/token"
)

const (
	emailTokenTTL = 24 * time.Hour
	resetTokenTTL = 15 * time.Minute
)

// AuthService implements the credential and session lifecycle: registration,
// email verification, login, refresh-token rotation, and password reset.
type AuthService struct {
	users       ports.UserRepository
	mailer      ports.Mailer
	issuer      *token.Issuer
	frontendURL string
	log         zerolog.Logger

	// now is the clock used for token expiry; overridable in tests.
	now func() time.Time
}

func NewAuthService(users ports.UserRepository, mailer ports.Mailer, issuer *token.Issuer, frontendURL string, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		mailer:      mailer,
		issuer:      issuer,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		log:         log,
		now:         time.Now,
	}
}

// Register creates an unverified, unapproved account and dispatches the
// verification email. The email token is valid for 24 hours.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*domain.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	verification := token.NewVerification(token.PurposeEmail, emailTokenTTL, s.now())
	now := s.now().UTC()
	user := &domain.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     firstName,
		LastName:      lastName,
		VerifiedToken: verification.Encode(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.mailer.SendVerifyEmail(ctx, email, s.frontendURL+"/verify-email/"+verification.Nonce)
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	return created, nil
}

// Login authenticates by email and password. Check order is fixed: unknown
// email, unverified email, unapproved account, wrong password. On success a
// fresh refresh token is persisted, revoking any previous session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if pendingVerification(user, token.PurposeEmail) {
		return nil, domain.ErrEmailNotVerified
	}
	if !user.Approved {
		return nil, domain.ErrNotApproved
	}
	if !verifyPassword(user.PasswordHash, password) {
		return nil, domain.ErrInvalidPassword
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return pair, nil
}

// VerifyEmail consumes an email verification nonce. A cleared or unknown
// nonce fails with ErrTokenInvalid, so a second call never silently succeeds.
func (s *AuthService) VerifyEmail(ctx context.Context, nonce string) error {
	user, err := s.consumableToken(ctx, nonce, token.PurposeEmail)
	if err != nil {
		return err
	}

	cleared := ""
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{VerifiedToken: &cleared}); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// ResendVerifyEmail reissues the email verification token for an account
// that never completed verification. The password must match: the endpoint
// is public and must not become an email probe for third parties.
func (s *AuthService) ResendVerifyEmail(ctx context.Context, email, password string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !pendingVerification(user, token.PurposeEmail) {
		return domain.ErrAlreadyVerified
	}
	if !verifyPassword(user.PasswordHash, password) {
		return domain.ErrInvalidPassword
	}

	verification := token.NewVerification(token.PurposeEmail, emailTokenTTL, s.now())
	encoded := verification.Encode()
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{VerifiedToken: &encoded}); err != nil {
		return err
	}

	s.mailer.SendVerifyEmail(ctx, email, s.frontendURL+"/verify-email/"+verification.Nonce)
	return nil
}

// RefreshToken rotates the session. The presented access token may be
// expired but must carry a valid signature; its embedded binding hash must
// still match the user's current credentials, otherwise the password changed
// since issuance and a full login is required.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken, accessToken string) (*ports.TokenPair, error) {
	claims, err := s.issuer.VerifyExpired(accessToken)
	if err != nil {
		return nil, domain.ErrBadAccessToken
	}

	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrBadRefreshToken
		}
		return nil, err
	}

	if token.BindingHash(user.Email, user.PasswordHash) != claims.Hash {
		return nil, domain.ErrStaleCredentials
	}

	return s.issueTokens(ctx, user)
}

// SendResetPassword issues a 15-minute password reset token and dispatches
// the reset email. Accounts that never verified their address are rejected.
func (s *AuthService) SendResetPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if pendingVerification(user, token.PurposeEmail) {
		return domain.ErrEmailNotVerified
	}

	verification := token.NewVerification(token.PurposePassword, resetTokenTTL, s.now())
	encoded := verification.Encode()
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{VerifiedToken: &encoded}); err != nil {
		return err
	}

	s.mailer.SendResetPassword(ctx, email, s.frontendURL+"/reset-password/"+verification.Nonce)
	s.log.Info().Str("user_id", user.ID).Msg("password reset requested")
	return nil
}

// ResetPassword consumes a reset nonce and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, nonce, newPassword string) error {
	user, err := s.consumableToken(ctx, nonce, token.PurposePassword)
	if err != nil {
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	cleared := ""
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{VerifiedToken: &cleared, PasswordHash: &hash}); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// issueTokens mints a new access/refresh pair and persists the refresh
// token, overwriting the previous one (single active session per user).
func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*ports.TokenPair, error) {
	access, err := s.issuer.MintAccess(user.ID, token.BindingHash(user.Email, user.PasswordHash), s.now())
	if err != nil {
		return nil, err
	}

	refresh := s.issuer.NewRefresh()
	if _, err := s.users.Update(ctx, user.ID, domain.UserUpdate{RefreshToken: &refresh}); err != nil {
		return nil, err
	}

	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// consumableToken looks up the purpose-scoped token holder and enforces
// expiry. Stored state is not mutated here; the caller clears the token.
func (s *AuthService) consumableToken(ctx context.Context, nonce string, purpose token.Purpose) (*domain.User, error) {
	user, err := s.users.FindByVerificationNonce(ctx, nonce, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	verification, err := token.ParseVerification(user.VerifiedToken)
	if err != nil || verification.Nonce != nonce || verification.Purpose != purpose {
		return nil, domain.ErrTokenInvalid
	}
	if verification.ExpiredAt(s.now()) {
		return nil, domain.ErrTokenExpired
	}

	return user, nil
}

// pendingVerification reports whether the user still carries an outstanding
// token for the given purpose.
func pendingVerification(user *domain.User, purpose token.Purpose) bool {
	if user.VerifiedToken == "" {
		return false
	}
	verification, err := token.ParseVerification(user.VerifiedToken)
	return err == nil && verification.Purpose == purpose
}
