package domain

import "errors"

// Sentinel errors returned by the core services. The API layer maps each of
// them to a deterministic HTTP status; anything not listed here is treated
// as an upstream failure and surfaces as a 500.

// Not found.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrQueueNotFound = errors.New("queue not found")
	ErrNotInQueue    = errors.New("user is not in the queue")
)

// Conflict.
var (
	ErrEmailTaken          = errors.New("a user with this email already exists")
	ErrAlreadyInQueue      = errors.New("user has already joined the queue")
	ErrAlreadyVerified     = errors.New("email is already verified")
	ErrAlreadyApproved     = errors.New("user is already approved")
	ErrQueueAlreadyPending = errors.New("queue status is already PENDING")
)

// Forbidden: authenticated but not allowed.
var (
	ErrForbidden   = errors.New("access forbidden")
	ErrQueueClosed = errors.New("queue does not accept new members")
)

// Unauthorized: missing, invalid, or stale credentials.
var (
	ErrEmailNotVerified = errors.New("verify email first")
	ErrNotApproved      = errors.New("not approved by administrator")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadAccessToken   = errors.New("bad access token")
	ErrBadRefreshToken  = errors.New("bad refresh token")
	ErrStaleCredentials = errors.New("login with new credentials")
)

// Bad request: malformed or expired one-time tokens.
var (
	ErrTokenInvalid = errors.New("invalid verification token")
	ErrTokenExpired = errors.New("verification token is expired")
)
