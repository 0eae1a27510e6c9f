package services

import "strings"

// MinResumeKeywordMatches is how many distinct section keywords a document
// needs before it is treated as a resume.
const MinResumeKeywordMatches = 2

const (
	msgEmptyResume   = "Please upload a proper resume PDF so we can analyze it."
	msgNotEnoughHits = "Please upload a proper resume. We could not find typical resume sections like Education or Experience."
)

var resumeKeywords = []string{
	"experience",
	"education",
	"skills",
	"projects",
	"work history",
	"professional summary",
	"certifications",
	"contact",
	"objective",
}

type nonResumeHint struct {
	keyword string
	message string
}

// Checked in order; the first hit decides the message.
var nonResumeHints = []nonResumeHint{
	{"roadmap", "The file you uploaded looks like a roadmap, not a resume."},
	{"tutorial", "It seems you uploaded a tutorial. Please upload a resume."},
	{"syllabus", "This document looks like a syllabus, not a resume."},
	{"notes", "Study notes detected. Please upload a resume instead."},
	{"assignment", "Assignments are not supported. Upload your resume for analysis."},
	{"cheatsheet", "Cheatsheets cannot be scored. Please use a resume PDF."},
}

type GateResult struct {
	Passed  bool
	Message string
}

type ContentGate interface {
	Check(text string) GateResult
}

type contentGate struct{}

func NewContentGate() ContentGate {
	return &contentGate{}
}

// Check implements ContentGate. Negative hints win over any amount of
// positive evidence.
func (g *contentGate) Check(text string) GateResult {
	if text == "" {
		return GateResult{Message: msgEmptyResume}
	}

	normalized := strings.ToLower(text)
	for _, hint := range nonResumeHints {
		if strings.Contains(normalized, hint.keyword) {
			return GateResult{Message: hint.message}
		}
	}

	if countResumeKeywords(normalized) < MinResumeKeywordMatches {
		return GateResult{Message: msgNotEnoughHits}
	}

	return GateResult{Passed: true}
}

// countResumeKeywords counts distinct keywords present in already lowercased
// text. Repeats of one keyword count once.
func countResumeKeywords(normalized string) int {
	hits := 0
	for _, keyword := range resumeKeywords {
		if strings.Contains(normalized, keyword) {
			hits++
		}
	}
	return hits
}
