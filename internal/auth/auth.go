// Package auth verifies the identity tokens attached to library requests.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller of a library operation.
type Identity struct {
	UserID string
	Email  string
}

// Verifier turns a bearer token into an identity.
type Verifier interface {
	Verify(token string) (*Identity, error)
}

// Claims carries the registered claims plus the user id and email the token
// was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// Directory resolves a user id to a contact email address. The identity
// provider owns this data; tokens do not always carry it.
type Directory interface {
	Email(ctx context.Context, userID string) (string, error)
}

// StaticDirectory is an in-memory Directory for tests and local setups.
type StaticDirectory map[string]string

func (d StaticDirectory) Email(_ context.Context, userID string) (string, error) {
	email, ok := d[userID]
	if !ok {
		return "", errors.New("unknown user: " + userID)
	}
	return email, nil
}

// GenerateToken signs a token for the user. Used by tests and local tooling;
// production tokens come from the identity provider.
func GenerateToken(userID, email string, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secret)
}
