package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumio/resume-analyzer/internal/models"
)

// scriptedBroadcaster hands out a pre-filled, already closed channel.
type scriptedBroadcaster struct {
	mu           sync.Mutex
	events       []models.ProgressEvent
	subscribed   string
	unsubscribed string
}

func (s *scriptedBroadcaster) Subscribe(sessionID string) <-chan models.ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = sessionID

	ch := make(chan models.ProgressEvent, len(s.events))
	for _, e := range s.events {
		ch <- e
	}
	close(ch)
	return ch
}

func (s *scriptedBroadcaster) Unsubscribe(sessionID string, ch <-chan models.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubscribed = sessionID
}

func (s *scriptedBroadcaster) Publish(string, models.ProgressPhase, int, string) {}
func (s *scriptedBroadcaster) Close(string)                                      {}
func (s *scriptedBroadcaster) CloseAfter(string, time.Duration)                  {}

func TestProgressHandler_StreamsEvents(t *testing.T) {
	broadcaster := &scriptedBroadcaster{events: []models.ProgressEvent{
		{SessionID: "s1", Phase: models.PhaseConnected, Progress: 0, Message: "Connected"},
		{SessionID: "s1", Phase: models.PhaseParsing, Progress: 20, Message: "Parsing PDF content..."},
		{SessionID: "s1", Phase: models.PhaseComplete, Progress: 100, Message: "Analysis complete!"},
	}}

	app := fiber.New()
	app.Get("/api/analyze/progress/:sessionId", NewProgressHandler(broadcaster).HandleProgress)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/analyze/progress/s1", nil), 2000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got []models.ProgressEvent
	for _, frame := range strings.Split(strings.TrimSpace(string(raw)), "\n\n") {
		require.True(t, strings.HasPrefix(frame, "data: "), frame)
		var event models.ProgressEvent
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &event))
		got = append(got, event)
	}
	assert.Equal(t, broadcaster.events, got)

	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	assert.Equal(t, "s1", broadcaster.subscribed)
	assert.Equal(t, "s1", broadcaster.unsubscribed)
}

func TestProgressHandler_StopsAfterTerminalEvent(t *testing.T) {
	broadcaster := &scriptedBroadcaster{events: []models.ProgressEvent{
		{SessionID: "s1", Phase: models.PhaseConnected, Progress: 0, Message: "Connected"},
		{SessionID: "s1", Phase: models.PhaseError, Progress: 0, Message: "Only PDF resumes are supported."},
		{SessionID: "s1", Phase: models.PhaseParsing, Progress: 20, Message: "stale"},
	}}

	app := fiber.New()
	app.Get("/api/analyze/progress/:sessionId", NewProgressHandler(broadcaster).HandleProgress)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/analyze/progress/s1", nil), 2000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	frames := strings.Split(strings.TrimSpace(string(raw)), "\n\n")
	require.Len(t, frames, 2)
	assert.Contains(t, frames[1], `"phase":"error"`)
	assert.NotContains(t, string(raw), "stale")
}
