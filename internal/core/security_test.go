// AngelaMos | 2026
// security_test.go

package core

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=65536,t=1,p=4$")

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"$bcrypt$nope",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x$c2FsdA$a2V5",
	} {
		_, err := VerifyPassword("x", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}
}

func TestCheckPassword(t *testing.T) {
	current, err := HashPassword("hunter22")
	require.NoError(t, err)

	t.Run("current params need no rehash", func(t *testing.T) {
		ok, rehash, err := CheckPassword("hunter22", current)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, rehash)
	})

	t.Run("outdated params produce a rehash", func(t *testing.T) {
		old := argon2Params{Memory: 8 * 1024, Time: 1, Threads: 1, KeyLen: 32, SaltLen: 16}
		salt := []byte("0123456789abcdef")
		legacy := old.encode(salt, old.derive("hunter22", salt))

		ok, rehash, err := CheckPassword("hunter22", legacy)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NotEmpty(t, rehash)

		ok, err = VerifyPassword("hunter22", rehash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		ok, rehash, err := CheckPassword("nope", current)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, rehash)
	})

	t.Run("unknown account", func(t *testing.T) {
		ok, _, err := CheckPassword("anything", "")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestNewOpaqueToken(t *testing.T) {
	token, hash, err := NewOpaqueToken(32)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashToken(token), hash)

	other, _, err := NewOpaqueToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
