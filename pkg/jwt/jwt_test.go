package jwt

import (
	"testing"
	"time"

	"gestmed/config"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerifiesSignature(t *testing.T) {
	parser := NewIdentityParser(config.ProxyConfig{TokenSecret: "s3cret"})
	require.True(t, parser.Verifies())

	token, err := Sign("s3cret", Claims{Email: "anna@clinic.it", Groups: []string{"staff"}}, time.Minute)
	require.NoError(t, err)

	claims, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "anna@clinic.it", claims.Email)
	assert.Equal(t, []string{"staff"}, claims.Groups)

	forged, err := Sign("other", Claims{Email: "eve@clinic.it"}, time.Minute)
	require.NoError(t, err)
	_, err = parser.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	parser := NewIdentityParser(config.ProxyConfig{TokenSecret: "s3cret"})

	claims := Claims{Email: "anna@clinic.it"}
	claims.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(-time.Minute))
	token, err := Sign("s3cret", claims, 0)
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseUnverifiedWithoutSecret(t *testing.T) {
	parser := NewIdentityParser(config.ProxyConfig{})
	assert.False(t, parser.Verifies())

	token, err := Sign("whatever", Claims{PreferredUsername: "anna"}, time.Minute)
	require.NoError(t, err)

	claims, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "anna", claims.PreferredUsername)

	_, err = parser.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
