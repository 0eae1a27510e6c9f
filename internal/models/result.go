package models

import "time"

// AnalyzeRequest holds the non-file form fields of POST /api/analyze.
type AnalyzeRequest struct {
	JobDescription string `form:"jobDescription" validate:"omitempty,min=50,minwords=10"`
}

type AnalyzeResponse struct {
	AnalysisReport
	SessionID string `json:"sessionId"`
	RecordID  string `json:"recordId"`
}

type HistoryItem struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
	Score     *int      `json:"score"`
}

type SearchHit struct {
	RecordID string  `json:"recordId"`
	FileName string  `json:"fileName"`
	Score    float32 `json:"score"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
