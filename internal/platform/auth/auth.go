package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("bearer token is missing")
	ErrInvalidToken = errors.New("bearer token is invalid")
)

// Identity is the authenticated caller as asserted by the auth provider.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Verifier validates HS256 access tokens issued by the managed auth
// provider. The subject claim carries the user id.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses an "Authorization" header value. An empty header yields
// ErrMissingToken so callers can distinguish anonymous from bad credentials.
func (v *Verifier) Verify(header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return Identity{}, ErrInvalidToken
	}
	if len(v.secret) == 0 {
		return Identity{}, fmt.Errorf("%w: verifier has no secret", ErrInvalidToken)
	}

	token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return Identity{}, fmt.Errorf("%w: subject claim missing", ErrInvalidToken)
	}

	identity := Identity{UserID: strings.TrimSpace(subject)}
	if email, ok := claims["email"].(string); ok {
		identity.Email = strings.TrimSpace(email)
	}
	if metadata, ok := claims["user_metadata"].(map[string]any); ok {
		for _, key := range []string{"full_name", "name"} {
			if name, ok := metadata[key].(string); ok && strings.TrimSpace(name) != "" {
				identity.Name = strings.TrimSpace(name)
				break
			}
		}
	}
	return identity, nil
}

// Sign issues a token in the provider's shape. Only tests call it, to mint
// caller identities; real tokens come from the provider.
func (v *Verifier) Sign(identity Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   identity.UserID,
		"email": identity.Email,
		"exp":   time.Now().Add(ttl).Unix(),
	}
	if identity.Name != "" {
		claims["user_metadata"] = map[string]any{"full_name": identity.Name}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
