package service

import (
	"strings"
)

// ChunkConfig controls how document content is split into windows.
type ChunkConfig struct {
	WindowWords  int
	OverlapWords int
}

// DefaultChunkConfig provides the standard window size for embeddings.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		WindowWords:  500,
		OverlapWords: 50,
	}
}

// chunkText splits text into overlapping word windows. Input at or
// below one window comes back as a single chunk. Windows that carry no
// non-whitespace content are dropped; if that leaves nothing, the
// original text is returned as a single chunk.
func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.WindowWords <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.OverlapWords < 0 || cfg.OverlapWords >= cfg.WindowWords {
		cfg.OverlapWords = DefaultChunkConfig().OverlapWords
	}

	words := strings.Fields(clean)
	if len(words) <= cfg.WindowWords {
		return []string{clean}
	}

	step := cfg.WindowWords - cfg.OverlapWords
	chunks := make([]string, 0, (len(words)-cfg.OverlapWords+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + cfg.WindowWords
		if end > len(words) {
			end = len(words)
		}

		chunk := strings.TrimSpace(strings.Join(words[start:end], " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(words) {
			break
		}
	}

	if len(chunks) == 0 {
		return []string{clean}
	}
	return chunks
}

// wordCount reports the number of whitespace-delimited tokens in text.
func wordCount(text string) int {
	return len(strings.Fields(text))
}
