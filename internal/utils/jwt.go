package utils // package utils provides helpers for session tokens, OTP codes and hashing

import (
	"crypto/rand"  // secure random number generation for OTP codes
	"errors"       // sentinel errors for token verification
	"fmt"          // formatting the drawn OTP code
	"math/big"     // big.Int arithmetic for uniform random draws
	"time"         // expiration handling

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionToken is a signed JWT bound to a single identity. The Token field
// holds the serialized JWT and Exp its UTC expiration. The identity service
// keeps the issued string on the user record so that only the most recently
// issued token is accepted (single active session).
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims are the values carried inside a session token.
type SessionClaims struct {
	UserID uint64
	Role   string
}

// ErrTokenInvalid is returned by ParseSessionToken when the token cannot be
// verified: bad signature, malformed claims or past expiry.
var ErrTokenInvalid = errors.New("invalid or expired token")

// NewSessionToken builds and signs an HS256 JWT for a user. The token carries
// the user id as the subject, the user's role, and expires after ttlDays.
func NewSessionToken(secret string, userID uint64, role string, ttlDays int) (SessionToken, error) {
	return NewSessionTokenAt(secret, userID, role, ttlDays, time.Now())
}

// NewSessionTokenAt is NewSessionToken with an explicit issue instant.
func NewSessionTokenAt(secret string, userID uint64, role string, ttlDays int, now time.Time) (SessionToken, error) {
	now = now.UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a session token and
// extracts its claims. Signature and expiry failures are indistinguishable to
// the caller; both surface as ErrTokenInvalid. Whether the token is still the
// identity's currently bound session is a separate check owned by the
// identity service.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrTokenInvalid
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return SessionClaims{}, ErrTokenInvalid
	}
	role, _ := claims["role"].(string)
	return SessionClaims{UserID: uint64(sub), Role: role}, nil
}

// NewOTPCode draws a 6-digit numeric code uniformly from [100000, 999999].
func NewOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
