package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantService stores the chunk embeddings of each history record.
type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertResumeChunk(ctx context.Context, chunk ResumeChunk, embedding []float32) error
	SearchSimilar(ctx context.Context, userID string, queryEmbedding []float32, limit int) ([]SearchResult, error)
	DeleteResumes(ctx context.Context, recordIDs []uuid.UUID) error
}

type ResumeChunk struct {
	RecordID uuid.UUID
	UserID   string
	FileName string
	Index    int
	Text     string
}

type SearchResult struct {
	RecordID string
	FileName string
	Score    float32
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port unless the URL names one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertResumeChunk implements QdrantService. Point IDs are derived from the
// record and chunk index so re-indexing a record overwrites its points.
func (q *qdrantService) UpsertResumeChunk(ctx context.Context, chunk ResumeChunk, embedding []float32) error {
	pointID := uuid.NewSHA1(chunk.RecordID, []byte(strconv.Itoa(chunk.Index)))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"record_id":   chunk.RecordID.String(),
			"user_id":     chunk.UserID,
			"file_name":   chunk.FileName,
			"chunk_index": int64(chunk.Index),
			"content":     chunk.Text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService. Results are limited to userID and
// hold one entry per record, scored by its best matching chunk.
func (q *qdrantService) SearchSimilar(ctx context.Context, userID string, queryEmbedding []float32, limit int) ([]SearchResult, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit * 4)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, limit)
	seen := make(map[string]bool)
	// Points come back ordered by score, so the first hit per record is its best
	for _, point := range searchResult {
		payload := point.Payload
		result := SearchResult{Score: point.Score}

		if v, ok := payload["record_id"]; ok {
			result.RecordID = v.GetStringValue()
		}
		if v, ok := payload["file_name"]; ok {
			result.FileName = v.GetStringValue()
		}

		if seen[result.RecordID] {
			continue
		}
		seen[result.RecordID] = true
		results = append(results, result)

		if len(results) == limit {
			break
		}
	}

	return results, nil
}

// DeleteResumes implements QdrantService.
func (q *qdrantService) DeleteResumes(ctx context.Context, recordIDs []uuid.UUID) error {
	if len(recordIDs) == 0 {
		return nil
	}

	conditions := make([]*qdrant.Condition, 0, len(recordIDs))
	for _, id := range recordIDs {
		conditions = append(conditions, qdrant.NewMatch("record_id", id.String()))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{Should: conditions},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete resumes: %w", err)
	}

	return nil
}
