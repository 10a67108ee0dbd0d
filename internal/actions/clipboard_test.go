package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClipboard_Take(t *testing.T) {
	// Arrange
	var clip MemoryClipboard
	_, ok := clip.Take()
	assert.False(t, ok)

	// Act
	require.NoError(t, clip.WriteAll("main"))
	text, ok := clip.Take()

	// Assert
	assert.True(t, ok)
	assert.Equal(t, "main", text)
	_, ok = clip.Take()
	assert.False(t, ok, "Take clears the stored text")
}
