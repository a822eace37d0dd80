package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tixgate/event-ticketing-backend/internal/auth"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := domain.User{ID: uuid.New(), Role: domain.RoleOrganizer}

	token, err := auth.NewAccessToken("secret", user, time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseAccessToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleOrganizer, claims.Role)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	token, err := auth.NewAccessToken("secret", domain.User{ID: uuid.New()}, time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseAccessToken("other", token)
	assert.Error(t, err)
}

func TestParseAccessToken_Expired(t *testing.T) {
	token, err := auth.NewAccessToken("secret", domain.User{ID: uuid.New()}, -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseAccessToken("secret", token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter2-but-longer")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2-but-longer", hash)

	assert.True(t, auth.VerifyPassword(hash, "hunter2-but-longer"))
	assert.False(t, auth.VerifyPassword(hash, "wrong"))
}

func TestNewReferralCode(t *testing.T) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := auth.NewReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, auth.ReferralCodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(charset, c), "unexpected character %q", c)
		}
		seen[code] = true
	}
	// 50 draws from a 36^6 space colliding down to a handful would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 40)
}
