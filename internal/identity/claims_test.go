package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, userID uuid.UUID, email string, metadata map[string]any, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		Email:        email,
		UserMetadata: metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionFromToken(t *testing.T) {
	userID := uuid.New()
	token := mintToken(t, userID, "jane@example.com",
		map[string]any{"name": "Jane Doe", "role": "recruiter"},
		time.Now().Add(time.Hour))

	sess, err := SessionFromToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, "jane@example.com", sess.Email)
	assert.Equal(t, "Jane Doe", sess.Name)
	assert.Equal(t, RoleRecruiter, sess.Role)
	assert.Equal(t, token, sess.AccessToken)
}

func TestSessionFromToken_DefaultRole(t *testing.T) {
	token := mintToken(t, uuid.New(), "x@example.com", nil, time.Now().Add(time.Hour))

	sess, err := SessionFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleJobSeeker, sess.Role)
}

func TestDecodeClaims_Expired(t *testing.T) {
	token := mintToken(t, uuid.New(), "x@example.com", nil, time.Now().Add(-time.Minute))

	_, err := DecodeClaims(token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestDecodeClaims_Empty(t *testing.T) {
	_, err := DecodeClaims("")
	assert.Error(t, err)
}

func TestDecodeClaims_Malformed(t *testing.T) {
	_, err := DecodeClaims("not.a.token")
	assert.Error(t, err)
}

func TestSessionFromToken_NonUUIDSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "service-account",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = SessionFromToken(signed)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a user id")
}
