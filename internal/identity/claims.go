package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the auth provider's access-token payload. The token is minted
// and verified server-side; the client only reads the payload to fill in
// session fields the REST responses omit.
type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the account UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return id, nil
}

// Role reads the signup role from user metadata, defaulting to job seeker.
func (c *Claims) Role() Role {
	if raw, ok := c.UserMetadata["role"].(string); ok && raw != "" {
		return Role(raw)
	}
	return RoleJobSeeker
}

// Name reads the display name from user metadata.
func (c *Claims) Name() string {
	for _, key := range []string{"name", "full_name"} {
		if raw, ok := c.UserMetadata[key].(string); ok && raw != "" {
			return raw
		}
	}
	return ""
}

// DecodeClaims parses an access token without verifying its signature.
// Signature verification happens at the provider; the client rejects only
// tokens it cannot read or that are already expired.
func DecodeClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}

	return claims, nil
}

// SessionFromToken builds a Session from a decoded access token.
func SessionFromToken(tokenString string) (*Session, error) {
	claims, err := DecodeClaims(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:      userID,
		Email:       claims.Email,
		Name:        claims.Name(),
		Role:        claims.Role(),
		AccessToken: tokenString,
	}, nil
}
