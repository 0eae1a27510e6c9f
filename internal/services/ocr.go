package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
)

// MinExtractedChars is the trimmed text length, in characters, below which
// OCR is attempted.
const MinExtractedChars = 50

type OCRStatus string

const (
	OCRSkipped  OCRStatus = "skipped"
	OCRReplaced OCRStatus = "replaced"
	OCRNoText   OCRStatus = "no_text"
	OCRFailed   OCRStatus = "failed"
)

type OCRService interface {
	// NeedsOCR reports whether text is too sparse to analyze as is.
	NeedsOCR(text string) bool
	// Escalate sends the document to the OCR endpoint. On success the OCR
	// text replaces current; on any failure current is returned unchanged.
	Escalate(ctx context.Context, fileName string, data []byte, current string) (string, OCRStatus)
}

type ocrService struct {
	url     string
	timeout time.Duration
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

func NewOCRService(url string, timeout time.Duration) OCRService {
	return &ocrService{
		url:     url,
		timeout: timeout,
	}
}

// NeedsOCR implements OCRService.
func (o *ocrService) NeedsOCR(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < MinExtractedChars
}

// Escalate implements OCRService.
func (o *ocrService) Escalate(ctx context.Context, fileName string, data []byte, current string) (string, OCRStatus) {
	text, err := o.recognize(ctx, fileName, data)
	if err != nil {
		log.Printf("❌ OCR error: %v", err)
		return current, OCRFailed
	}

	if text == "" {
		return current, OCRNoText
	}

	log.Printf("✅ OCR success, extracted text length: %d", len(text))
	return text, OCRReplaced
}

func (o *ocrService) recognize(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The OCR service only accepts uploads named *.pdf
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		fileName += ".pdf"
	}

	agent := fiber.Post(o.url)
	agent.Timeout(o.timeout)
	agent.FileData(&fiber.FormFile{
		Fieldname: "file",
		Name:      fileName,
		Content:   data,
	})
	agent.MultipartForm(nil)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("ocr request failed: %w", errs[0])
	}

	if code < 200 || code > 299 {
		return "", fmt.Errorf("ocr service returned status %d", code)
	}

	var resp ocrResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}

	return resp.Text, nil
}
