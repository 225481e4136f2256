package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_Split(t *testing.T) {
	t.Run("blank text has no chunks", func(t *testing.T) {
		chunks, err := NewChunker(1000, 200).Split(" \n\t ")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("short text is one chunk", func(t *testing.T) {
		chunks, err := NewChunker(1000, 200).Split("a short note")
		require.NoError(t, err)
		assert.Equal(t, []string{"a short note"}, chunks)
	})

	t.Run("long text is split", func(t *testing.T) {
		words := strings.Repeat("alpha beta gamma delta ", 20)
		chunks, err := NewChunker(40, 10).Split(words)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len([]rune(c)), 40)
			assert.NotEmpty(t, strings.TrimSpace(c))
		}
	})
}
