package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, hasher.Check("correct horse battery staple", hash))
	assert.False(t, hasher.Check("wrong password", hash))
}

func TestBcryptHasher_SamePasswordDifferentHashes(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	first, err := hasher.Hash("pw")
	require.NoError(t, err)
	second, err := hasher.Hash("pw")
	require.NoError(t, err)

	// bcrypt salts every hash, so equal inputs never collide in storage.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("pw", first))
	assert.True(t, hasher.Check("pw", second))
}

func TestBcryptHasher_CheckRejectsMalformedHash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	assert.False(t, hasher.Check("pw", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Check("pw", ""))
}
