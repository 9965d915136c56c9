// Package token mints and verifies the HS256 bearer tokens that carry the
// owner id in the "sub" claim.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

func Issue(secret, ownerID string, ttl time.Duration) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("owner id is empty")
	}

	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:  ownerID,
		IssuedAt: now.Unix(),
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Parse verifies the token and returns its owner id.
func Parse(secret, raw string) (string, error) {
	claims := &jwt.StandardClaims{}

	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return claims.Subject, nil
}
