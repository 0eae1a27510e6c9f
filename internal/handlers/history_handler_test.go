package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"resumio/resume-analyzer/internal/config"
	"resumio/resume-analyzer/internal/models"
	"resumio/resume-analyzer/internal/repositories"
	"resumio/resume-analyzer/internal/services"
)

type fakeIndexer struct {
	results []services.SearchResult
	err     error
	query   string
	userID  string
}

func (f *fakeIndexer) Index(ctx context.Context, job services.IndexJob) error { return nil }

func (f *fakeIndexer) Search(ctx context.Context, userID, query string, limit int) ([]services.SearchResult, error) {
	f.userID = userID
	f.query = query
	return f.results, f.err
}

func newHistoryRepo(t *testing.T) repositories.HistoryRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return repositories.NewHistoryRepository(db)
}

func retain(t *testing.T, retainer services.HistoryRetainer, userID, fileName string, score int) uuid.UUID {
	t.Helper()
	result, err := retainer.Retain(context.Background(), services.RetainInput{
		UserID:   userID,
		FileName: fileName,
		Report: &models.AnalysisReport{
			ATSScore:      score,
			SectionScores: map[string]models.SectionTier{},
			MissingInfo:   []string{},
			Corrections:   []string{},
		},
	})
	require.NoError(t, err)
	return result.Record.ID
}

func newHistoryApp(handler *HistoryHandler, userID string) *fiber.App {
	app := fiber.New()
	app.Get("/api/user/history", withUser(userID), handler.HandleList)
	app.Get("/api/user/history/search", withUser(userID), handler.HandleSearch)
	return app
}

func TestHistoryHandler_List(t *testing.T) {
	repo := newHistoryRepo(t)
	retainer := services.NewHistoryRetainer(repo, 50)
	retain(t, retainer, "user-1", "first.pdf", 61)
	retain(t, retainer, "user-2", "theirs.pdf", 99)

	app := newHistoryApp(NewHistoryHandler(retainer, repo, nil), "user-1")
	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/history", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []models.HistoryItem
	decodeBody(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "first.pdf", items[0].FileName)
	require.NotNil(t, items[0].Score)
	assert.Equal(t, 61, *items[0].Score)
	assert.False(t, items[0].CreatedAt.IsZero())
}

func TestHistoryHandler_ListEmpty(t *testing.T) {
	repo := newHistoryRepo(t)
	app := newHistoryApp(NewHistoryHandler(services.NewHistoryRetainer(repo, 50), repo, nil), "nobody")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/history", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var items []models.HistoryItem
	decodeBody(t, resp, &items)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHistoryHandler_SearchDisabled(t *testing.T) {
	repo := newHistoryRepo(t)
	app := newHistoryApp(NewHistoryHandler(services.NewHistoryRetainer(repo, 50), repo, nil), "user-1")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/history/search?q=go", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestHistoryHandler_SearchDropsPrunedRecords(t *testing.T) {
	repo := newHistoryRepo(t)
	retainer := services.NewHistoryRetainer(repo, 50)
	kept := retain(t, retainer, "user-1", "kept.pdf", 70)
	foreign := retain(t, retainer, "user-2", "foreign.pdf", 70)

	indexer := &fakeIndexer{results: []services.SearchResult{
		{RecordID: kept.String(), FileName: "kept.pdf", Score: 0.91},
		{RecordID: uuid.NewString(), FileName: "pruned.pdf", Score: 0.88},
		{RecordID: foreign.String(), FileName: "foreign.pdf", Score: 0.80},
	}}

	app := newHistoryApp(NewHistoryHandler(retainer, repo, indexer), "user-1")
	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/history/search?q=kubernetes", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var hits []models.SearchHit
	decodeBody(t, resp, &hits)
	require.Len(t, hits, 1)
	assert.Equal(t, kept.String(), hits[0].RecordID)
	assert.InDelta(t, 0.91, hits[0].Score, 0.0001)
	assert.Equal(t, "kubernetes", indexer.query)
	assert.Equal(t, "user-1", indexer.userID)
}

func TestHistoryHandler_SearchValidation(t *testing.T) {
	repo := newHistoryRepo(t)
	indexer := &fakeIndexer{err: errors.New("qdrant down")}
	app := newHistoryApp(NewHistoryHandler(services.NewHistoryRetainer(repo, 50), repo, indexer), "user-1")

	resp, err := app.Test(httptest.NewRequest("GET", "/api/user/history/search?q=", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/user/history/search?q=go", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
