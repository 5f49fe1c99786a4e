package service

import (
	"fmt"
	"strings"
)

// NoRelevantContext is returned by FormatContext for an empty result
// set so downstream prompt assembly always receives a non-empty,
// deterministic placeholder.
const NoRelevantContext = "No relevant information found in the knowledge base."

const contextBlockDelimiter = "\n\n---\n\n"

// FormatContext renders ranked search results into a citation-annotated
// text block for the generation step. Ordering matches the input order.
func FormatContext(results []*SearchResult) string {
	if len(results) == 0 {
		return NoRelevantContext
	}

	blocks := make([]string, 0, len(results))
	for i, r := range results {
		if r == nil || r.Chunk == nil {
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "[%d] %s (relevance: %.1f%%)\n", i+1, r.Chunk.Title, r.Score*100)
		fmt.Fprintf(&b, "Source: %s", r.Chunk.SourceType)
		if r.Chunk.Metadata.Category != "" {
			fmt.Fprintf(&b, " | Category: %s", r.Chunk.Metadata.Category)
		}
		b.WriteString("\n")
		b.WriteString(r.Chunk.Text)
		blocks = append(blocks, b.String())
	}

	if len(blocks) == 0 {
		return NoRelevantContext
	}
	return strings.Join(blocks, contextBlockDelimiter)
}
