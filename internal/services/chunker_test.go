package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextChunker_ShortTextIsOneChunk(t *testing.T) {
	chunker := NewTextChunker(1000, 200)

	chunks := chunker.ChunkText("  Jane Doe\n\n\nExperience\nAcme Corp  ")
	assert.Equal(t, []string{"Jane Doe\nExperience\nAcme Corp"}, chunks)
}

func TestTextChunker_EmptyText(t *testing.T) {
	chunker := NewTextChunker(1000, 200)

	assert.Empty(t, chunker.ChunkText(""))
	assert.Empty(t, chunker.ChunkText("\n \n\t\n"))
}

func TestTextChunker_RespectsSizeAndOverlap(t *testing.T) {
	chunker := NewTextChunker(40, 15)

	lines := []string{
		"line one is here",
		"line two is here",
		"line three is here",
		"line four is here",
		"line five is here",
	}
	chunks := chunker.ChunkText(strings.Join(lines, "\n"))

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 40)
	}

	// Every line is present somewhere and the first chunk starts at the top
	joined := strings.Join(chunks, "\n")
	for _, line := range lines {
		assert.Contains(t, joined, line)
	}
	assert.True(t, strings.HasPrefix(chunks[0], lines[0]))
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1], lines[len(lines)-1]))
}

func TestTextChunker_CarriesTrailingLine(t *testing.T) {
	chunker := NewTextChunker(20, 10)

	chunks := chunker.ChunkText("aaaaaaaaa\nbbbbbbbbb\nccccccccc")
	assert.Equal(t, []string{
		"aaaaaaaaa\nbbbbbbbbb",
		"bbbbbbbbb\nccccccccc",
	}, chunks)
}

func TestTextChunker_SplitsLongLines(t *testing.T) {
	chunker := NewTextChunker(10, 0)

	chunks := chunker.ChunkText(strings.Repeat("é", 25))
	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 10)
	}
	assert.Equal(t, strings.Repeat("é", 25), strings.Join(chunks, ""))
}

func TestNewTextChunker_Defaults(t *testing.T) {
	c := NewTextChunker(0, -1).(*textChunker)
	assert.Equal(t, 1000, c.maxChunkSize)
	assert.Equal(t, 0, c.overlap)

	c = NewTextChunker(100, 200).(*textChunker)
	assert.Equal(t, 25, c.overlap)
}
