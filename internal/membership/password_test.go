// internal/membership/password_test.go
package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialHashRoundTrip(t *testing.T) {
	hash, salt, err := hashCredential("senha123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifyCredential("senha123", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyCredential("wrong", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialHashUsesFreshSalt(t *testing.T) {
	hash1, salt1, err := hashCredential("senha123")
	require.NoError(t, err)
	hash2, salt2, err := hashCredential("senha123")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}
