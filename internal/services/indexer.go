package services

import (
	"context"
	"fmt"
	"strings"
)

// ResumeIndexer keeps the vector index in step with retained history.
type ResumeIndexer interface {
	Index(ctx context.Context, job IndexJob) error
	Search(ctx context.Context, userID, query string, limit int) ([]SearchResult, error)
}

type resumeIndexer struct {
	gemini  GeminiService
	qdrant  QdrantService
	chunker TextChunker
}

func NewResumeIndexer(gemini GeminiService, qdrant QdrantService, chunker TextChunker) ResumeIndexer {
	return &resumeIndexer{gemini: gemini, qdrant: qdrant, chunker: chunker}
}

// Index implements ResumeIndexer. Pruned records are removed even when
// embedding the new one fails.
func (r *resumeIndexer) Index(ctx context.Context, job IndexJob) error {
	var errs []string

	if err := r.qdrant.DeleteResumes(ctx, job.PrunedIDs); err != nil {
		errs = append(errs, err.Error())
	}

	for i, chunk := range r.chunker.ChunkText(job.Text) {
		embedding, err := r.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			errs = append(errs, fmt.Sprintf("chunk %d: %v", i, err))
			continue
		}

		err = r.qdrant.UpsertResumeChunk(ctx, ResumeChunk{
			RecordID: job.RecordID,
			UserID:   job.UserID,
			FileName: job.FileName,
			Index:    i,
			Text:     chunk,
		}, embedding)
		if err != nil {
			errs = append(errs, fmt.Sprintf("chunk %d: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("index record %s: %s", job.RecordID, strings.Join(errs, "; "))
	}
	return nil
}

// Search implements ResumeIndexer.
func (r *resumeIndexer) Search(ctx context.Context, userID, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	embedding, err := r.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	return r.qdrant.SearchSimilar(ctx, userID, embedding, limit)
}
