package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumio/resume-analyzer/internal/middleware"
	"resumio/resume-analyzer/internal/models"
	"resumio/resume-analyzer/internal/repositories"
	"resumio/resume-analyzer/internal/services"
)

const defaultSearchLimit = 5

type HistoryHandler struct {
	retainer services.HistoryRetainer
	repo     repositories.HistoryRepository
	indexer  services.ResumeIndexer
}

// NewHistoryHandler builds the history endpoints. indexer may be nil, in
// which case search answers 503.
func NewHistoryHandler(
	retainer services.HistoryRetainer,
	repo repositories.HistoryRepository,
	indexer services.ResumeIndexer,
) *HistoryHandler {
	return &HistoryHandler{
		retainer: retainer,
		repo:     repo,
		indexer:  indexer,
	}
}

// HandleList handles GET /api/user/history
func (h *HistoryHandler) HandleList(c *fiber.Ctx) error {
	records, err := h.retainer.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		log.Printf("❌ Failed to list history: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to fetch history",
			Code:  string(services.KindPersistenceFailure),
		})
	}

	items := make([]models.HistoryItem, 0, len(records))
	for _, record := range records {
		item := models.HistoryItem{
			ID:        record.ID.String(),
			FileName:  record.FileName,
			CreatedAt: record.CreatedAt,
		}
		if record.Report != nil {
			score := record.Report.ATSScore
			item.Score = &score
		}
		items = append(items, item)
	}

	return c.JSON(items)
}

// HandleSearch handles GET /api/user/history/search?q=
func (h *HistoryHandler) HandleSearch(c *fiber.Ctx) error {
	if h.indexer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Resume search is not enabled",
		})
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return badRequest(c, "Query parameter 'q' is required")
	}

	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit <= 0 || limit > 20 {
		limit = defaultSearchLimit
	}

	userID := middleware.UserID(c)
	results, err := h.indexer.Search(c.UserContext(), userID, query, limit)
	if err != nil {
		log.Printf("❌ Resume search failed: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(models.ErrorResponse{
			Error: "Resume search failed",
			Code:  string(services.KindUpstreamUnavailable),
		})
	}

	// The index may still hold points for records pruned moments ago
	ids := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		if id, err := uuid.Parse(r.RecordID); err == nil {
			ids = append(ids, id)
		}
	}
	live, err := h.repo.FindByIDs(c.UserContext(), userID, ids)
	if err != nil {
		log.Printf("❌ Failed to resolve search hits: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to fetch history",
			Code:  string(services.KindPersistenceFailure),
		})
	}
	retained := make(map[string]bool, len(live))
	for _, record := range live {
		retained[record.ID.String()] = true
	}

	hits := make([]models.SearchHit, 0, len(results))
	for _, r := range results {
		if !retained[r.RecordID] {
			continue
		}
		hits = append(hits, models.SearchHit{
			RecordID: r.RecordID,
			FileName: r.FileName,
			Score:    r.Score,
		})
	}

	return c.JSON(hits)
}
