package security

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.NoError(t, h.Compare(hash, "secret123"))
	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	userID := uuid.New()

	access, refresh, err := tm.Generate(userID.String(), "alice")
	require.NoError(t, err)

	id, err := tm.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
	assert.Equal(t, "alice", id.Username)

	id, err = tm.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
	assert.Equal(t, time.Hour, tm.RefreshTTL())
}

func TestTokenManagerRejectsSwappedTokens(t *testing.T) {
	tm := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	access, refresh, err := tm.Generate(uuid.NewString(), "bob")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = tm.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = tm.ValidateAccessToken("garbage")
	assert.Error(t, err)
}

func TestTokenManagerRejectsSameSecretWrongType(t *testing.T) {
	tm := NewTokenManager("shared", "shared", time.Minute, time.Hour)
	_, refresh, err := tm.Generate(uuid.NewString(), "carol")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestTokenManagerExpired(t *testing.T) {
	tm := NewTokenManager("a", "r", time.Minute, time.Hour)
	tm.accessTTL = -time.Minute
	access, _, err := tm.Generate(uuid.NewString(), "dave")
	require.NoError(t, err)

	_, err = tm.ValidateAccessToken(access)
	assert.Error(t, err)
}

func TestCodeGenerator(t *testing.T) {
	g := NewCodeGenerator()
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := g.Generate()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}
