package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(4) // low cost keeps the test fast

	hashed, err := h.Hash("A1B2C3D4")
	require.NoError(t, err)
	require.NotEqual(t, "A1B2C3D4", hashed)

	match, err := h.Verify(hashed, "A1B2C3D4")
	require.NoError(t, err)
	assert.True(t, match)

	match, err = h.Verify(hashed, "FFFFFFFF")
	require.NoError(t, err)
	assert.False(t, match)
}

func TestBcryptHasherEmptyInputs(t *testing.T) {
	h := NewBcryptHasher(4)

	_, err := h.Hash("")
	assert.Error(t, err)

	_, err = h.Verify("", "code")
	assert.Error(t, err)

	_, err = h.Verify("some-hash", "")
	assert.Error(t, err)
}

func TestBcryptHasherDistinctDigests(t *testing.T) {
	h := NewBcryptHasher(4)

	h1, err := h.Hash("A1B2C3D4")
	require.NoError(t, err)
	h2, err := h.Hash("A1B2C3D4")
	require.NoError(t, err)

	// bcrypt salts every digest
	assert.NotEqual(t, h1, h2)
}
