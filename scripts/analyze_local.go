package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"resumio/resume-analyzer/internal/config"
	"resumio/resume-analyzer/internal/services"
)

// Runs local PDFs through the analysis stages without persistence.
// Usage: go run ./scripts/analyze_local.go resume.pdf [more.pdf ...]
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <resume.pdf> [more.pdf ...]", filepath.Base(os.Args[0]))
	}

	log.Println("🚀 Starting local analysis...")
	cfg := config.Load()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	ocr := services.NewOCRService(cfg.OCR.URL, cfg.OCR.Timeout)
	gate := services.NewContentGate()
	scorer := services.NewScorerService(geminiService, cfg.Gemini.Timeout)
	parser := services.NewResponseParser(services.NewJSONRepairer())

	ctx := context.Background()
	successCount := 0
	failCount := 0

	for _, path := range os.Args[1:] {
		log.Printf("\n📄 Processing: %s", path)

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("   ❌ Failed to read file: %v", err)
			failCount++
			continue
		}

		extraction := pdfParser.Extract(data)
		pages := extraction.PageCount
		if pages == 0 {
			pages = pdfParser.EstimatePages(data)
		}
		log.Printf("   ✅ %d pages, %d characters", pages, len(strings.TrimSpace(extraction.Text)))

		if pages > cfg.Analysis.MaxPages {
			log.Printf("   ⚠️  More than %d pages, skipping...", cfg.Analysis.MaxPages)
			failCount++
			continue
		}

		text := extraction.Text
		if ocr.NeedsOCR(text) {
			var status services.OCRStatus
			text, status = ocr.Escalate(ctx, filepath.Base(path), data, text)
			log.Printf("   🔎 OCR: %s", status)
		}

		if check := gate.Check(text); !check.Passed {
			log.Printf("   ⚠️  %s", check.Message)
			failCount++
			continue
		}

		raw, err := scorer.Score(ctx, text, "")
		if err != nil {
			log.Printf("   ❌ Scoring failed: %v", err)
			failCount++
			continue
		}

		report, err := parser.Parse(raw)
		if err != nil {
			log.Printf("   ❌ %v", err)
			failCount++
			continue
		}

		out, _ := json.MarshalIndent(report, "   ", "  ")
		log.Printf("   ✅ Report:\n   %s", out)
		successCount++
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Summary:")
	log.Printf("   ✅ Analyzed: %d files", successCount)
	log.Printf("   ❌ Failed: %d files", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}
}
