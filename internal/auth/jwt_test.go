package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustManager(t *testing.T, secret string) *Manager {
	t.Helper()
	m, err := NewManager(secret, 0)
	require.NoError(t, err)
	return m
}

func TestNewManager_RequiresSecret(t *testing.T) {
	m, err := NewManager("", time.Hour)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueAdminToken_Claims(t *testing.T) {
	m := mustManager(t, "test-secret")
	fixed := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	token, err := m.IssueAdminToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.VerifyAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.IsAdmin())
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, fixed, claims.IssuedAt.Time.UTC())
	assert.Equal(t, fixed.Add(7*24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestVerifyAdminToken_FailuresAreIndistinguishable(t *testing.T) {
	m := mustManager(t, "test-secret")

	other := mustManager(t, "other-secret")
	wrongKey, err := other.IssueAdminToken()
	require.NoError(t, err)

	past := mustManager(t, "test-secret")
	past.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, err := past.IssueAdminToken()
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{Role: RoleAdmin}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"wrong key":      wrongKey,
		"expired":        expired,
		"malformed":      "not-a-token",
		"empty":          "",
		"none algorithm": noneAlg,
		"no expiry":      noExpiry,
	}

	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			claims, err := m.VerifyAdminToken(token)
			assert.Nil(t, claims)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestVerifyAdminToken_WrongRoleStillParses(t *testing.T) {
	m := mustManager(t, "test-secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	claims, err := m.VerifyAdminToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())
}

func TestAdminCredentials_Check(t *testing.T) {
	plain := NewAdminCredentials("admin", "s3cret", "")
	assert.True(t, plain.Check("admin", "s3cret"))
	assert.False(t, plain.Check("admin", "wrong"))
	assert.False(t, plain.Check("root", "s3cret"))
	assert.False(t, plain.Check("", ""))

	hash, err := HashAdminPassword("hashed-pass")
	require.NoError(t, err)

	hashed := NewAdminCredentials("admin", "ignored", hash)
	assert.True(t, hashed.Check("admin", "hashed-pass"))
	assert.False(t, hashed.Check("admin", "ignored"))
}
