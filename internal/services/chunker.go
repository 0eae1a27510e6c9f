package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits extracted resume text into overlapping pieces small
// enough to embed one at a time.
type TextChunker interface {
	ChunkText(text string) []string
}

type textChunker struct {
	maxChunkSize int
	overlap      int
}

func NewTextChunker(maxChunkSize, overlap int) TextChunker {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}
	return &textChunker{maxChunkSize: maxChunkSize, overlap: overlap}
}

// ChunkText implements TextChunker. Lines are kept whole where possible;
// a line longer than the chunk size is cut on rune boundaries.
func (tc *textChunker) ChunkText(text string) []string {
	var chunks []string
	var current []string
	size := 0
	// fresh is false while current holds only lines carried from the
	// previous chunk.
	fresh := false

	for _, line := range strings.Split(CleanText(text), "\n") {
		if line == "" {
			continue
		}

		for _, piece := range splitRunes(line, tc.maxChunkSize) {
			n := utf8.RuneCountInString(piece) + 1
			if size+n > tc.maxChunkSize && fresh {
				chunks = append(chunks, strings.Join(current, "\n"))
				current, size = tc.carry(current)
				fresh = false
			}
			if size+n > tc.maxChunkSize {
				current, size = nil, 0
			}
			current = append(current, piece)
			size += n
			fresh = true
		}
	}

	if fresh {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

// carry returns the trailing lines of lines that fit in the overlap budget.
func (tc *textChunker) carry(lines []string) ([]string, int) {
	var carried []string
	size := 0
	for i := len(lines) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(lines[i]) + 1
		if size+n > tc.overlap {
			break
		}
		carried = append([]string{lines[i]}, carried...)
		size += n
	}
	return carried, size
}

func splitRunes(line string, max int) []string {
	// Leave room for the joining newline
	limit := max - 1
	if limit <= 0 || utf8.RuneCountInString(line) <= limit {
		return []string{line}
	}

	runes := []rune(line)
	var parts []string
	for len(runes) > limit {
		parts = append(parts, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
