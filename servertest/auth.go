package servertest

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignToken returns an HS256 token for subject that expires after ttl, for
// use with WithBearerToken. A zero ttl means no expiry.
func SignToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  subject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("servertest: sign token: %w", err)
	}
	return token, nil
}
