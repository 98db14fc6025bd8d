package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/config"
)

func newManager() *Manager {
	return NewManager(config.AuthConfig{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		JWTTTL:    time.Hour,
		JWTIssuer: "storefront",
	})
}

func TestIssueAndParse(t *testing.T) {
	m := newManager()
	userID := uuid.New()

	raw, expiresAt, err := m.Issue(userID, "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestParse_Expired(t *testing.T) {
	m := newManager()
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, _, err := m.Issue(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParse_WrongSecretOrIssuer(t *testing.T) {
	raw, _, err := newManager().Issue(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	other := newManager()
	other.secret = []byte("another-secret-another-secret-xx")
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other = newManager()
	other.issuer = "someone-else"
	_, err = other.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: uuid.NewString(), Issuer: "storefront"}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newManager().Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
