package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the ATS scoring prompt. The same resume text
// and job description always produce the same prompt.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) string {
	jobDescription = strings.TrimSpace(jobDescription)

	var jdSchema, jdSection string
	if jobDescription != "" {
		jdSchema = `,
  "jdMatch": {
    "similarityScore": number (0-100) measuring how closely the resume content matches the job description,
    "qualificationScore": number (0-100) measuring how qualified the candidate appears for this specific role,
    "improvementSuggestions": ["string", "string"]
  }`
		jdSection = fmt.Sprintf(`
Compare the resume against this job description and fill "jdMatch". Improvement suggestions must be specific to the role.
Job Description:
%s
`, jobDescription)
	}

	return fmt.Sprintf(`You are an expert Resume Analyzer (ATS).
Use a deterministic rubric so identical resumes always produce identical scores.
Evaluate each section independently before assigning the overall score.
Return ONLY a valid JSON object with the following structure (no markdown fences):
{
  "atsScore": number (0-100) derived as the average of the section scores mapped as High=90, Medium=70, Low=50 (round to the nearest whole number),
  "sectionScores": {
    "Education": "High" | "Medium" | "Low",
    "Experience": "High" | "Medium" | "Low",
    "Skills": "High" | "Medium" | "Low",
    "Projects": "High" | "Medium" | "Low"
  },
  "missingInfo": ["string", "string"],
  "corrections": ["string", "string"]%s
}
Missing info and corrections should reflect gaps that would improve ATS performance.
%s
Resume Text (do not rephrase or summarize, just analyze):
%s`, jdSchema, jdSection, resumeText)
}
