package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestChunkText(t *testing.T) {
	cfg := DefaultChunkConfig()

	t.Run("empty input produces no chunks", func(t *testing.T) {
		assert.Nil(t, chunkText("", cfg))
		assert.Nil(t, chunkText("   \n\t  ", cfg))
	})

	t.Run("short input is a single chunk", func(t *testing.T) {
		chunks := chunkText("hello world", cfg)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	})

	t.Run("input at exactly one window is a single chunk", func(t *testing.T) {
		chunks := chunkText(makeWords(500), cfg)
		assert.Len(t, chunks, 1)
	})

	t.Run("one word over the window produces two chunks", func(t *testing.T) {
		chunks := chunkText(makeWords(501), cfg)
		require.Len(t, chunks, 2)
		assert.Equal(t, 500, wordCount(chunks[0]))
		// second window starts at the overlap boundary
		assert.True(t, strings.HasPrefix(chunks[1], "w450 "))
	})

	t.Run("chunk count follows window arithmetic", func(t *testing.T) {
		cases := []struct {
			words int
			want  int
		}{
			{950, 2},
			{951, 3},
			{1200, 3},
			{1400, 3},
			{1401, 4},
		}
		for _, tc := range cases {
			chunks := chunkText(makeWords(tc.words), cfg)
			assert.Len(t, chunks, tc.want, "words=%d", tc.words)
		}
	})

	t.Run("consecutive chunks overlap by the configured word count", func(t *testing.T) {
		chunks := chunkText(makeWords(1200), cfg)
		require.Len(t, chunks, 3)

		first := strings.Fields(chunks[0])
		second := strings.Fields(chunks[1])
		assert.Equal(t, first[len(first)-50:], second[:50])
	})

	t.Run("every word appears in at least one chunk", func(t *testing.T) {
		chunks := chunkText(makeWords(1234), cfg)
		seen := make(map[string]bool)
		for _, c := range chunks {
			for _, w := range strings.Fields(c) {
				seen[w] = true
			}
		}
		assert.Len(t, seen, 1234)
	})

	t.Run("invalid config falls back to defaults", func(t *testing.T) {
		chunks := chunkText(makeWords(600), ChunkConfig{WindowWords: 0, OverlapWords: -1})
		assert.Len(t, chunks, 2)
	})

	t.Run("custom window without overlap", func(t *testing.T) {
		chunks := chunkText(makeWords(30), ChunkConfig{WindowWords: 10, OverlapWords: 0})
		require.Len(t, chunks, 3)
		assert.Equal(t, 10, wordCount(chunks[1]))
	})
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, wordCount(""))
	assert.Equal(t, 0, wordCount("   "))
	assert.Equal(t, 3, wordCount("one  two\nthree"))
}
