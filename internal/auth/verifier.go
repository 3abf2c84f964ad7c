package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/supabase-community/gotrue-go"
)

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is the principal resolved from a verified access token.
type Identity struct {
	UserID string
	Email  string
}

// Verifier resolves Supabase access tokens to identities. With a project
// JWT secret configured the token is verified locally (HS256); otherwise
// each token is presented to the GoTrue API.
type Verifier struct {
	jwtSecret string
	authAPI   gotrue.Client
}

func NewVerifier(jwtSecret string, authAPI gotrue.Client) *Verifier {
	return &Verifier{
		jwtSecret: jwtSecret,
		authAPI:   authAPI,
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrNoToken
	}
	if v.jwtSecret != "" {
		return v.verifyLocal(token)
	}
	return v.verifyRemote(ctx, token)
}

func (v *Verifier) verifyLocal(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(v.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	return Identity{UserID: sub, Email: email}, nil
}

func (v *Verifier) verifyRemote(ctx context.Context, token string) (Identity, error) {
	if v.authAPI == nil {
		return Identity{}, ErrInvalidToken
	}
	user, err := v.authAPI.WithToken(token).GetUser()
	if err != nil || user == nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		UserID: user.ID.String(),
		Email:  user.Email,
	}, nil
}
