package token

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/LessonsQueue/QueueManager/internal/core/domain"
)

const defaultAccessTTL = 15 * time.Minute

// AccessClaims is the payload carried by an access token. Hash binds the
// token to the credentials it was issued against (see BindingHash), so a
// password change invalidates every previously issued token.
type AccessClaims struct {
	Hash string `json:"hash"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies HS256 access tokens and opaque refresh tokens.
// Refresh tokens carry no claims; they are valid only while equal to the
// value stored on the user record.
type Issuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewIssuer(secret string, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL}
}

// MintAccess signs an access token for the user with the given binding hash.
func (i *Issuer) MintAccess(userID, bindingHash string, now time.Time) (string, error) {
	claims := AccessClaims{
		Hash: bindingHash,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// NewRefresh returns a fresh opaque refresh token.
func (i *Issuer) NewRefresh() string {
	return uuid.NewString()
}

// Verify parses and fully validates an access token, expiry included.
func (i *Issuer) Verify(tokenString string) (*AccessClaims, error) {
	return i.parse(tokenString, true)
}

// VerifyExpired parses an access token accepting a past expiry, but still
// rejecting a bad signature. The refresh flow relies on this: the presented
// access token may be stale, yet must provably come from this issuer.
func (i *Issuer) VerifyExpired(tokenString string) (*AccessClaims, error) {
	return i.parse(tokenString, false)
}

func (i *Issuer) parse(tokenString string, checkExpiry bool) (*AccessClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, domain.ErrBadAccessToken
	}
	if checkExpiry && !parsed.Valid {
		return nil, domain.ErrBadAccessToken
	}
	return claims, nil
}

// BindingHash digests (email, passwordHash) into the value embedded in
// access tokens. It only has to be stable and collision resistant; it
// carries no secret.
func BindingHash(email, passwordHash string) string {
	sum := sha256.Sum256([]byte(email + "," + passwordHash))
	return hex.EncodeToString(sum[:])
}
