package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rentpay-backend/internal/models"
)

// ErrInvalidToken is returned for every rejected access token.
var ErrInvalidToken = errors.New("invalid token")

// Claims mirrors the access tokens minted by the identity service.
type Claims struct {
	Email        string       `json:"email"`
	Role         string       `json:"role"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

type UserMetadata struct {
	UserType string `json:"user_type"`
	FullName string `json:"full_name"`
}

// Verifier checks HS256 access tokens signed with the identity service's secret.
type Verifier struct {
	secret   []byte
	audience string
}

func NewVerifier(secret, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), audience: audience}
}

// Verify validates the token and returns the identity it carries.
func (v *Verifier) Verify(tokenString string) (*models.Identity, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	return &models.Identity{
		ID:       claims.Subject,
		Email:    claims.Email,
		UserType: claims.UserMetadata.UserType,
	}, nil
}
