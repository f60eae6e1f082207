// Package auth builds and verifies the HS256-signed access tokens carried
// on authenticated requests.
package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accountd/accountd/internal/common"
)

// Claims is the access-token payload: subject (user id), username, email and
// the role snapshot taken at issuance time. Roles are re-read from storage
// on every mint, so revocations take effect on the next refresh or login.
type Claims struct {
	jwt.RegisteredClaims
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// UserID returns the numeric subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, common.NewAuthenticationError("auth.errors.invalid_token")
	}
	return id, nil
}

// HasRole reports whether the role snapshot contains role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GenerateToken signs an access token for the user with iat=now and
// exp=now+validity.
func GenerateToken(userID int64, username, email string, roles []string, secret []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Username: username,
		Email:    email,
		Roles:    roles,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", common.ErrInternal
	}
	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
// Any failure is an AuthenticationError.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.NewAuthenticationError("auth.errors.invalid_token")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, common.NewAuthenticationError("auth.errors.invalid_token")
	}
	return claims, nil
}

// ParseTokenAllowExpired verifies the signature but tolerates an elapsed
// expiry. The refresh flow uses it to recover the subject from an access
// token that has just run out.
func ParseTokenAllowExpired(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.NewAuthenticationError("auth.errors.invalid_token")
		}
		return secret, nil
	})
	if err != nil {
		return nil, common.NewAuthenticationError("auth.errors.invalid_token")
	}
	return claims, nil
}
