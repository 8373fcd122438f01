// AngelaMos | 2026
// password_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapParams = PasswordParams{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Cleanup(SetPasswordParams(cheapParams))

	hash, err := HashPassword("pw12345678")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := VerifyPassword("pw12345678", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("pw12345678")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt must differ per hash")
}

func TestVerifyPassword_RejectsMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$AA$AA", "$argon2id$v=1$m=1,t=1,p=1$AA$AA"} {
		_, err := VerifyPassword("x", bad)
		assert.Error(t, err, bad)
	}
}

func TestVerifyPasswordWithRehash(t *testing.T) {
	restore := SetPasswordParams(cheapParams)
	hash, err := HashPassword("pw12345678")
	require.NoError(t, err)
	restore()

	t.Cleanup(SetPasswordParams(PasswordParams{Memory: 2048, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}))

	ok, newHash, err := VerifyPasswordWithRehash("pw12345678", hash)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, newHash)
	assert.Contains(t, newHash, "m=2048")

	ok, again, err := VerifyPasswordWithRehash("pw12345678", newHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, again)
}

func TestVerifyPasswordTimingSafe_NoHash(t *testing.T) {
	t.Cleanup(SetPasswordParams(cheapParams))

	ok, newHash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, newHash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	assert.False(t, ok)
}
