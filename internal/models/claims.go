package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims holds the JWT payload the auth collaborator issues. The engine only
// ever reads UserID out of it; it never mints or refreshes tokens.
type Claims struct {
	UserID               uuid.UUID `json:"user_id"`
	Username             string    `json:"username,omitempty"`
	jwt.RegisteredClaims           // Issuer, Subject, ExpiresAt, IssuedAt, ID (JTI)
}
