package services

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

type PDFParserService interface {
	// Extract never fails; on any parser error it returns an empty result
	// with Failed set so the caller can fall back.
	Extract(data []byte) ExtractionResult
	EstimatePages(data []byte) int
}

type ExtractionResult struct {
	Text      string
	PageCount int
	Failed    bool
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

// Extract implements PDFParserService.
func (p *pdfParserService) Extract(data []byte) (result ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  PDF parser panicked: %v", r)
			result = ExtractionResult{Failed: true}
		}
	}()

	text, pages, err := extractPlainText(data)
	if err != nil {
		log.Printf("⚠️  PDF parse error: %v", err)
		return ExtractionResult{Failed: true}
	}

	return ExtractionResult{
		Text:      text,
		PageCount: pages,
	}
}

func extractPlainText(data []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not discard the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), totalPage, nil
}

// pageMarker matches page object declarations. The trailing \b keeps
// "/Type /Pages" (the page tree node) from counting.
var pageMarker = regexp.MustCompile(`(?i)/Type\s*/Page\b`)

// EstimatePages counts page objects directly in the raw bytes. It is used
// when the structured parser could not report a page count.
func (p *pdfParserService) EstimatePages(data []byte) (count int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  Failed to estimate PDF page count: %v", r)
			count = 0
		}
	}()

	return len(pageMarker.FindAllIndex(latin1(data), -1))
}

// latin1 widens every byte to its own rune so that arbitrary binary content
// is scanned one byte per character.
func latin1(data []byte) []byte {
	ascii := true
	for _, b := range data {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return data
	}

	buf := make([]byte, 0, len(data)+len(data)/4)
	for _, b := range data {
		buf = append(buf, string(rune(b))...)
	}
	return buf
}

// CleanText trims surrounding whitespace and drops blank lines.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
