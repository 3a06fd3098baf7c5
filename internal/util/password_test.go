package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("pw")
	require.NoError(t, err)
	h2, err := HashPassword("pw")
	require.NoError(t, err)

	assert.NotEqual(t, "pw", h1)
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("pw", h1))
	assert.True(t, VerifyPassword("pw", h2))
	assert.False(t, VerifyPassword("wrong", h1))
	assert.False(t, VerifyPassword("pw", "not-a-hash"))
}
