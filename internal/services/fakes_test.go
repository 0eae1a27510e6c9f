package services

import (
	"context"
	"strings"
	"sync"

	"resumio/resume-analyzer/internal/models"
)

type fakeGemini struct {
	mu         sync.Mutex
	text       string
	err        error
	embedErr   error
	prompts    []string
	opts       []GenerationOptions
	embedded   []string
	ctxErrSeen []error
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedded = append(f.embedded, text)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeGemini) GenerateText(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	f.ctxErrSeen = append(f.ctxErrSeen, ctx.Err())
	return f.text, f.err
}

type fakePDFParser struct {
	result        ExtractionResult
	estimate      int
	estimateCalls int
}

func (f *fakePDFParser) Extract(data []byte) ExtractionResult {
	return f.result
}

func (f *fakePDFParser) EstimatePages(data []byte) int {
	f.estimateCalls++
	return f.estimate
}

type fakeOCR struct {
	text     string
	status   OCRStatus
	calls    int
	fileName string
}

func (f *fakeOCR) NeedsOCR(text string) bool {
	return len(strings.TrimSpace(text)) < MinExtractedChars
}

func (f *fakeOCR) Escalate(ctx context.Context, fileName string, data []byte, current string) (string, OCRStatus) {
	f.calls++
	f.fileName = fileName
	if f.status == OCRReplaced {
		return f.text, f.status
	}
	return current, f.status
}

type fakeScorer struct {
	raw    string
	err    error
	calls  int
	text   string
	jd     string
	ctxErr error
}

func (f *fakeScorer) Score(ctx context.Context, resumeText, jobDescription string) (string, error) {
	f.calls++
	f.text = resumeText
	f.jd = jobDescription
	f.ctxErr = ctx.Err()
	return f.raw, f.err
}

type fakeRetainer struct {
	err     error
	inputs  []RetainInput
	records []models.HistoryRecord
}

func (f *fakeRetainer) Retain(ctx context.Context, in RetainInput) (*RetainResult, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	record := &models.HistoryRecord{
		UserID:   in.UserID,
		FileName: in.FileName,
		FilePath: in.FilePath,
	}
	_ = record.BeforeCreate(nil)
	return &RetainResult{Record: record}, nil
}

func (f *fakeRetainer) List(ctx context.Context, userID string) ([]models.HistoryRecord, error) {
	return f.records, f.err
}

type fakeWorker struct {
	jobs []IndexJob
}

func (f *fakeWorker) Start(ctx context.Context) {}
func (f *fakeWorker) Stop()                     {}

func (f *fakeWorker) EnqueueJob(job IndexJob) bool {
	f.jobs = append(f.jobs, job)
	return true
}
