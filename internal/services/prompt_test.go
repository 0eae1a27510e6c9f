package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalysisPrompt_WithoutJobDescription(t *testing.T) {
	prompt := NewPromptBuilder().BuildAnalysisPrompt(resumeText, "   ")

	assert.Contains(t, prompt, `"atsScore"`)
	assert.Contains(t, prompt, "High=90, Medium=70, Low=50")
	for _, section := range []string{"Education", "Experience", "Skills", "Projects"} {
		assert.Contains(t, prompt, `"`+section+`"`)
	}
	assert.Contains(t, prompt, resumeText)
	assert.NotContains(t, prompt, "jdMatch")
	assert.NotContains(t, prompt, "Job Description:")
}

func TestBuildAnalysisPrompt_WithJobDescription(t *testing.T) {
	jd := "We are hiring a backend engineer with strong Go and PostgreSQL experience."
	prompt := NewPromptBuilder().BuildAnalysisPrompt(resumeText, "\n"+jd+"\n")

	assert.Contains(t, prompt, `"jdMatch"`)
	assert.Contains(t, prompt, `"similarityScore"`)
	assert.Contains(t, prompt, `"qualificationScore"`)
	assert.Contains(t, prompt, `"improvementSuggestions"`)
	assert.Contains(t, prompt, "Job Description:\n"+jd)
}
