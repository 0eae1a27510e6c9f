package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorer_UsesDeterministicJSONSettings(t *testing.T) {
	gemini := &fakeGemini{text: modelResponse}
	scorer := NewScorerService(gemini, time.Minute)

	raw, err := scorer.Score(context.Background(), resumeText, "")
	require.NoError(t, err)
	assert.Equal(t, modelResponse, raw)

	require.Len(t, gemini.opts, 1)
	assert.Equal(t, DeterministicJSON, gemini.opts[0])
	assert.Equal(t, float32(0), gemini.opts[0].Temperature)
	assert.Equal(t, float32(1), gemini.opts[0].TopK)
	assert.True(t, gemini.opts[0].JSON)
	assert.Contains(t, gemini.prompts[0], resumeText)
}

func TestScorer_NoRetryOnFailure(t *testing.T) {
	gemini := &fakeGemini{err: errors.New("upstream 500")}
	scorer := NewScorerService(gemini, time.Minute)

	_, err := scorer.Score(context.Background(), resumeText, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")
	assert.Len(t, gemini.prompts, 1)
}

func TestScorer_IdenticalInputsGiveIdenticalPrompts(t *testing.T) {
	gemini := &fakeGemini{text: "{}"}
	scorer := NewScorerService(gemini, 0)

	for i := 0; i < 3; i++ {
		_, err := scorer.Score(context.Background(), resumeText, "Go developer")
		require.NoError(t, err)
	}

	require.Len(t, gemini.prompts, 3)
	assert.Equal(t, gemini.prompts[0], gemini.prompts[1])
	assert.Equal(t, gemini.prompts[1], gemini.prompts[2])
}
