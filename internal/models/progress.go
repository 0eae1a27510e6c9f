package models

type ProgressPhase string

const (
	PhaseConnected ProgressPhase = "connected"
	PhaseParsing   ProgressPhase = "parsing"
	PhaseOCR       ProgressPhase = "ocr"
	PhaseAI        ProgressPhase = "ai"
	PhaseComplete  ProgressPhase = "complete"
	PhaseError     ProgressPhase = "error"
)

// Terminal reports whether no further events follow this phase.
func (p ProgressPhase) Terminal() bool {
	return p == PhaseComplete || p == PhaseError
}

type ProgressEvent struct {
	SessionID string        `json:"sessionId"`
	Phase     ProgressPhase `json:"phase"`
	Progress  int           `json:"progress"`
	Message   string        `json:"message"`
}
