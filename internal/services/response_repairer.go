package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resumio/resume-analyzer/internal/models"
)

// JSONRepairer turns a model response into a decoded value. Implementations
// decide how much damage they tolerate; the pipeline only sees success or
// ErrUnparseable.
type JSONRepairer interface {
	Decode(raw string, target any) error
}

var ErrUnparseable = errors.New("could not parse AI response")

type lenientJSONRepairer struct{}

// NewJSONRepairer returns the two-attempt repairer: a strict decode of the
// outermost braces, then one retry after sanitizing quotes and backslashes.
func NewJSONRepairer() JSONRepairer {
	return &lenientJSONRepairer{}
}

// Decode implements JSONRepairer.
func (r *lenientJSONRepairer) Decode(raw string, target any) error {
	payload := extractJSON(raw)
	if payload == "" {
		payload = strings.TrimSpace(stripCodeFences(raw))
	}

	// Syntax is checked before decoding so a failed first attempt never
	// leaves half-filled fields in target.
	data := []byte(payload)
	if !json.Valid(data) {
		data = []byte(sanitizeJSON(payload))
		if !json.Valid(data) {
			return fmt.Errorf("%w: invalid JSON after sanitizing", ErrUnparseable)
		}
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	return nil
}

// extractJSON returns the text between the first '{' and the last '}', or ""
// when there is no such span.
func extractJSON(text string) string {
	first := strings.Index(text, "{")
	last := strings.LastIndex(text, "}")
	if first == -1 || last == -1 || last < first {
		return ""
	}
	return text[first : last+1]
}

func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	return strings.ReplaceAll(text, "```", "")
}

var quoteReplacer = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
)

// sanitizeJSON straightens curly quotes and escapes every backslash that does
// not start a valid JSON escape.
func sanitizeJSON(payload string) string {
	payload = quoteReplacer.Replace(payload)

	var b strings.Builder
	b.Grow(len(payload) + 8)
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(payload) && isEscapeChar(payload[i+1]) {
			b.WriteByte(c)
			b.WriteByte(payload[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

func isEscapeChar(c byte) bool {
	switch c {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	}
	return c >= '0' && c <= '9'
}

// ResponseParser decodes a model response into an AnalysisReport.
type ResponseParser interface {
	Parse(raw string) (*models.AnalysisReport, error)
}

type responseParser struct {
	repairer JSONRepairer
}

func NewResponseParser(repairer JSONRepairer) ResponseParser {
	if repairer == nil {
		repairer = NewJSONRepairer()
	}
	return &responseParser{repairer: repairer}
}

// wireReport mirrors AnalysisReport with lenient numeric types; models emit
// 72.5 as readily as 72.
type wireReport struct {
	ATSScore      *float64          `json:"atsScore"`
	SectionScores map[string]string `json:"sectionScores"`
	MissingInfo   []string          `json:"missingInfo"`
	Corrections   []string          `json:"corrections"`
	JDMatch       *struct {
		SimilarityScore        float64  `json:"similarityScore"`
		QualificationScore     float64  `json:"qualificationScore"`
		ImprovementSuggestions []string `json:"improvementSuggestions"`
	} `json:"jdMatch"`
}

// Parse implements ResponseParser.
func (p *responseParser) Parse(raw string) (*models.AnalysisReport, error) {
	var wire wireReport
	if err := p.repairer.Decode(raw, &wire); err != nil {
		return nil, err
	}

	report := &models.AnalysisReport{
		SectionScores: make(map[string]models.SectionTier, len(wire.SectionScores)),
		MissingInfo:   nonNil(wire.MissingInfo),
		Corrections:   nonNil(wire.Corrections),
	}
	for section, tier := range wire.SectionScores {
		report.SectionScores[section] = models.NormalizeTier(tier)
	}

	if wire.ATSScore != nil {
		report.ATSScore = models.ClampScore(*wire.ATSScore)
	} else {
		report.ATSScore = models.DeriveATSScore(report.SectionScores)
	}

	if wire.JDMatch != nil {
		report.JDMatch = &models.JDMatch{
			SimilarityScore:        models.ClampScore(wire.JDMatch.SimilarityScore),
			QualificationScore:     models.ClampScore(wire.JDMatch.QualificationScore),
			ImprovementSuggestions: nonNil(wire.JDMatch.ImprovementSuggestions),
		}
	}

	return report, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
