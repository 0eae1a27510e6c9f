package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"resumio/resume-analyzer/internal/services"
)

// keepAliveInterval is how often an idle stream writes a comment line, which
// is also how a vanished client gets noticed.
const keepAliveInterval = 15 * time.Second

type ProgressHandler struct {
	progress services.ProgressBroadcaster
}

func NewProgressHandler(progress services.ProgressBroadcaster) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// HandleProgress handles GET /api/analyze/progress/:sessionId
func (h *ProgressHandler) HandleProgress(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if sessionID == "" {
		return badRequest(c, "Session id is required")
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events := h.progress.Subscribe(sessionID)
	log.Printf("📡 Progress stream opened for session %s", sessionID)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.progress.Unsubscribe(sessionID, events)

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					log.Printf("📡 Progress stream closed for session %s", sessionID)
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					log.Printf("⚠️  Progress client for session %s went away", sessionID)
					return
				}
				if event.Phase.Terminal() {
					log.Printf("📡 Progress stream finished for session %s", sessionID)
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
