package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA‑256 hashing for stored refresh tokens
	"encoding/hex"  // hex encoding of digests
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
	"github.com/google/uuid"       // unique token ids (jti)
)

// Token types carried in the "typ" claim.  An access token is never
// accepted where a refresh token is expected and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned by ParseToken for any token that is
// malformed, badly signed, expired or of the wrong type.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the payload shared by access and refresh tokens.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Claims are the JWT claims issued by this service.
type Claims struct {
	Identity
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// SignedToken is a serialized JWT along with its expiry.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs a short-lived HS256 token for id.
func NewAccessToken(secret string, id Identity, ttl time.Duration) (SignedToken, error) {
	return newToken(secret, id, TokenTypeAccess, ttl)
}

// NewRefreshToken signs a long-lived HS256 token for id.  Only its
// SHA-256 digest (HashRefreshRaw) should be persisted.
func NewRefreshToken(secret string, id Identity, ttl time.Duration) (SignedToken, error) {
	return newToken(secret, id, TokenTypeRefresh, ttl)
}

func newToken(secret string, id Identity, typ string, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Identity: id,
		Type:     typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies raw with secret and checks that it carries the
// expected token type.  Any failure yields ErrInvalidToken.
func ParseToken(secret, raw, wantType string) (Identity, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC signed.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Type != wantType || claims.UserID == "" {
		return Identity{}, ErrInvalidToken
	}
	return claims.Identity, nil
}

// HashRefreshRaw returns the SHA‑256 hash of the raw refresh token as a hex
// string.  Only this digest is stored on the user document.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
