package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// DefaultTokenTTL is the validity window of issued tokens.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken covers malformed, unsigned, tampered and wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Claims represents the JWT claims used by the system: the standard subject,
// issued-at and expiry plus the account email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// NewClaims builds claims for userID issued at now and valid for ttl.
func NewClaims(userID, email string, now time.Time, ttl time.Duration) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
}

// IssueToken signs claims with HS256.
func IssueToken(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("in internal/auth/token.go/IssueToken(): error while `token.SignedString()` calling: %w", err)
	}

	return tokenString, nil
}

// VerifyToken checks the signature of tokenString and its expiry against now.
// Only HMAC-SHA256 is accepted.
func VerifyToken(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}

	if !claims.VerifyExpiresAt(now, true) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
