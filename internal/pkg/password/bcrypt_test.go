package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(DefaultCost)
	hash, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, "pw123", hash)
	assert.True(t, h.Verify(hash, "pw123"))

	for _, other := range []string{"", "pw124", "PW123", "pw123 ", " pw123"} {
		assert.False(t, h.Verify(hash, other), "verify must fail for %q", other)
	}
}

func TestBcryptHasher_CostAndSalt(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(0)
	first, err := h.Hash("secret")
	require.NoError(t, err)
	second, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	cost, err := bcrypt.Cost([]byte(first))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()

	_, err := NewBcryptHasher(bcrypt.MinCost).Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestBcryptHasher_VerifyGarbageHash(t *testing.T) {
	t.Parallel()

	assert.False(t, NewBcryptHasher(bcrypt.MinCost).Verify("not-a-hash", "pw"))
}
