package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", h)

	assert.True(t, CheckPassword(h, "password123"))
	assert.False(t, CheckPassword(h, "password124"))
	assert.False(t, CheckPassword("not-a-hash", "password123"))
}
