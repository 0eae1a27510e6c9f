package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumio/resume-analyzer/internal/models"
)

const PDFMediaType = "application/pdf"

type AnalyzeInput struct {
	UserID         string
	SessionID      string
	FileName       string
	ContentType    string
	Size           int64
	Data           []byte
	JobDescription string
}

type AnalyzeOutput struct {
	RecordID uuid.UUID
	Report   *models.AnalysisReport
}

type AnalyzerOptions struct {
	MaxFileSize        int64
	MaxPages           int
	ProgressCloseDelay time.Duration
}

type AnalyzerService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeOutput, error)
}

type analyzerService struct {
	storage   StorageService
	pdfParser PDFParserService
	ocr       OCRService
	gate      ContentGate
	scorer    ScorerService
	parser    ResponseParser
	retainer  HistoryRetainer
	progress  ProgressBroadcaster
	worker    Worker
	opts      AnalyzerOptions
}

// NewAnalyzerService wires the pipeline. worker may be nil when the resume
// index is disabled.
func NewAnalyzerService(
	storage StorageService,
	pdfParser PDFParserService,
	ocr OCRService,
	gate ContentGate,
	scorer ScorerService,
	parser ResponseParser,
	retainer HistoryRetainer,
	progress ProgressBroadcaster,
	worker Worker,
	opts AnalyzerOptions,
) AnalyzerService {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 5 * 1024 * 1024
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 2
	}
	return &analyzerService{
		storage:   storage,
		pdfParser: pdfParser,
		ocr:       ocr,
		gate:      gate,
		scorer:    scorer,
		parser:    parser,
		retainer:  retainer,
		progress:  progress,
		worker:    worker,
		opts:      opts,
	}
}

// Analyze implements AnalyzerService. The stages run strictly in order; the
// uploaded file is removed on every exit path.
func (a *analyzerService) Analyze(ctx context.Context, in AnalyzeInput) (out *AnalyzeOutput, err error) {
	sid := in.SessionID
	defer func() {
		if err != nil {
			a.progress.Publish(sid, models.PhaseError, 0, UserMessage(err))
			a.progress.CloseAfter(sid, a.opts.ProgressCloseDelay)
		}
	}()

	if err := a.validateUpload(in); err != nil {
		return nil, err
	}

	filePath, err := a.storage.SaveFile(in.Data)
	if err != nil {
		return nil, persistenceFailure("Failed to store the uploaded file.", err)
	}
	defer func() {
		_ = a.storage.DeleteFile(filePath)
	}()

	// Remote calls may outlive an aborted client request; their results are
	// simply discarded.
	remoteCtx := context.WithoutCancel(ctx)

	log.Printf("📄 Parsing %s (%d bytes) for user %s", in.FileName, len(in.Data), in.UserID)
	a.progress.Publish(sid, models.PhaseParsing, 20, "Parsing PDF content...")

	extraction := a.pdfParser.Extract(in.Data)
	if extraction.Failed {
		a.progress.Publish(sid, models.PhaseParsing, 35, "PDF parsing failed, continuing...")
	} else {
		a.progress.Publish(sid, models.PhaseParsing, 35, "PDF parsing complete")
	}

	pages := extraction.PageCount
	if pages == 0 {
		pages = a.pdfParser.EstimatePages(in.Data)
		log.Printf("📄 Estimated %d pages from page markers", pages)
	}

	if pages > a.opts.MaxPages {
		return nil, rejectInput(fmt.Sprintf("Uploaded PDF has more than %d pages.", a.opts.MaxPages))
	}

	text := extraction.Text
	if a.ocr.NeedsOCR(text) {
		log.Println("🔎 Text insufficient, attempting OCR...")
		a.progress.Publish(sid, models.PhaseOCR, 45, "Text insufficient, sending to OCR backend...")

		var status OCRStatus
		text, status = a.ocr.Escalate(remoteCtx, in.FileName, in.Data, text)
		switch status {
		case OCRReplaced:
			a.progress.Publish(sid, models.PhaseOCR, 60, "OCR processing complete")
		case OCRFailed:
			a.progress.Publish(sid, models.PhaseOCR, 60, "OCR failed, continuing with existing text...")
		default:
			a.progress.Publish(sid, models.PhaseOCR, 60, "OCR completed with no additional text")
		}
	} else {
		a.progress.Publish(sid, models.PhaseParsing, 60, "Sufficient text extracted, skipping OCR")
	}

	if strings.TrimSpace(text) == "" {
		return nil, rejectInput("Could not extract text from resume.")
	}

	if check := a.gate.Check(text); !check.Passed {
		log.Printf("⚠️  Content gate rejected %s: %s", in.FileName, check.Message)
		return nil, rejectInput(check.Message)
	}

	log.Println("🤖 Analyzing resume with LLM...")
	a.progress.Publish(sid, models.PhaseAI, 70, "Starting AI analysis...")
	a.progress.Publish(sid, models.PhaseAI, 80, "Generating AI insights...")

	raw, err := a.scorer.Score(remoteCtx, text, in.JobDescription)
	if err != nil {
		return nil, upstreamUnavailable("AI analysis failed. Please try again later.", err)
	}
	a.progress.Publish(sid, models.PhaseAI, 90, "AI analysis complete")

	report, err := a.parser.Parse(raw)
	if err != nil {
		log.Printf("❌ JSON parse error: %v", err)
		log.Printf("❌ Raw response: %s", raw)
		return nil, responseMalformed("Failed to parse AI response. The model might have refused the request.", err)
	}

	log.Println("💾 Saving analysis results...")
	retained, err := a.retainer.Retain(ctx, RetainInput{
		UserID:   in.UserID,
		FileName: in.FileName,
		FilePath: filePath,
		Report:   report,
	})
	if err != nil {
		return nil, persistenceFailure("Failed to save analysis results.", err)
	}

	a.progress.Publish(sid, models.PhaseComplete, 100, "Analysis complete!")
	a.progress.CloseAfter(sid, a.opts.ProgressCloseDelay)

	if a.worker != nil {
		a.worker.EnqueueJob(IndexJob{
			RecordID:  retained.Record.ID,
			UserID:    in.UserID,
			FileName:  in.FileName,
			Text:      text,
			PrunedIDs: retained.PrunedIDs,
		})
	}

	log.Printf("✅ Analysis completed for user %s (score %d)", in.UserID, report.ATSScore)
	return &AnalyzeOutput{
		RecordID: retained.Record.ID,
		Report:   report,
	}, nil
}

func (a *analyzerService) validateUpload(in AnalyzeInput) error {
	if len(in.Data) == 0 {
		return rejectInput("No file uploaded")
	}
	if in.Size > a.opts.MaxFileSize || int64(len(in.Data)) > a.opts.MaxFileSize {
		return rejectInput(fmt.Sprintf("File exceeds %s limit.", formatSize(a.opts.MaxFileSize)))
	}
	if in.ContentType != PDFMediaType {
		return rejectInput("Only PDF resumes are supported.")
	}
	return nil
}

// UserMessage returns the text that is safe to show for err.
func UserMessage(err error) string {
	if ae, ok := AsAnalysisError(err); ok && ae.Message != "" {
		return ae.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Analysis timed out"
	}
	return "Analysis failed"
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
