package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("guest-pass-1234")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	t.Run("Correct password", func(t *testing.T) {
		ok, err := VerifyPassword("guest-pass-1234", hash)
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Wrong password", func(t *testing.T) {
		ok, err := VerifyPassword("other", hash)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Malformed hash", func(t *testing.T) {
		ok, err := VerifyPassword("guest-pass-1234", "$2a$10$abc")
		assert.ErrorIs(t, err, ErrInvalidHash)
		assert.False(t, ok)
	})
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGetPageOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 500}
	offset, limit := p.GetPageOffset()
	assert.Equal(t, 200, offset)
	assert.Equal(t, 100, limit)

	empty := Pagination{}
	offset, limit = empty.GetPageOffset()
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, limit)
}
