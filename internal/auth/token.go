package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

var ErrNoIdentity = errors.New("token carries no identity claim")

// Identity extracts the user identifier from a stored access token without
// verifying its signature. Verification belongs to the room service; the
// client only needs the claim to label its own chat frames and to decide
// whether to show host-only controls. Callers treat an error as "no
// identity" and degrade to the non-privileged state.
func Identity(token string) (types.UserID, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("decode access token: %w", err)
	}

	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return types.UserID(sub), nil
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return types.UserID(email), nil
	}
	return "", ErrNoIdentity
}

func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("token carries no expiry claim")
	}
	return exp.Time, nil
}
