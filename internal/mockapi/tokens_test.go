package mockapi

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	tok, err := tokens.Issue(7, "ann@example.com")
	require.NoError(t, err)

	id, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(tok, &claims)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	tok, err := tokens.Issue(7, "ann@example.com")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewTokens("secret", time.Hour)
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := later.Parse(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewTokens("other", time.Hour)
		other.now = tokens.now
		_, err := other.Parse(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}}
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = tokens.Parse(foreign)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer, Subject: "7"}}
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Parse(none)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("a.b.c")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
