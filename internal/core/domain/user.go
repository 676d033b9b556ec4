package domain

import "time"

// User models a registered account.
//
// VerifiedToken holds the single outstanding verification token for the
// user, encoded as "<nonce>::<purpose>::<RFC 3339 expiry>". A non-empty
// token with purpose "email" means the address is still unverified and the
// user cannot log in. RefreshToken is an opaque value with at most one live
// copy per user, so rotating it revokes the previous session.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Admin         bool      `json:"-"`
	Approved      bool      `json:"-"`
	RefreshToken  string    `json:"-"`
	VerifiedToken string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UserUpdate is a partial update applied to a stored user. Nil fields are
// left untouched; non-nil pointers overwrite, with the empty string used to
// clear RefreshToken or VerifiedToken.
type UserUpdate struct {
	PasswordHash  *string
	RefreshToken  *string
	VerifiedToken *string
	Approved      *bool
}
