package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-32bytes-padded!!"

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(42, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ParseToken(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.ProfileID)
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateToken(7, testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(7, testSecret, -time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "some-other-secret"},
		{"expired", expired, testSecret},
		{"malformed", "not.a.jwt", testSecret},
		{"empty", "", testSecret},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseToken(tc.token, tc.secret)
			assert.Error(t, err)
		})
	}
}

func TestTokensCarryDistinctProfiles(t *testing.T) {
	t1, err := GenerateToken(1, testSecret, time.Hour)
	require.NoError(t, err)
	t2, err := GenerateToken(2, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	c1, err := ParseToken(t1, testSecret)
	require.NoError(t, err)
	c2, err := ParseToken(t2, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c1.ProfileID)
	assert.Equal(t, int64(2), c2.ProfileID)
}
