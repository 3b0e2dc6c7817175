package utils

import (
	"errors"
	"fmt"

	"istishara/config"

	"github.com/golang-jwt/jwt"
)

// ExtractUserIDFromToken validates a bearer token issued by the identity
// service and returns the verified requester ID. The booking core trusts
// this ID without re-validating credentials.
func ExtractUserIDFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	userID, _ := claims["userId"].(string)
	if userID == "" {
		// Some issuers use the standard subject claim instead.
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return "", errors.New("token missing user ID claim")
	}
	return userID, nil
}
