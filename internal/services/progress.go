package services

import (
	"sync"
	"time"

	"resumio/resume-analyzer/internal/models"
)

// progressBuffer bounds how many undelivered events one subscriber may hold.
const progressBuffer = 32

type ProgressBroadcaster interface {
	// Subscribe registers a sink for sessionID, replacing any previous one,
	// and returns its event channel. The channel is closed when the session
	// is closed or unsubscribed.
	Subscribe(sessionID string) <-chan models.ProgressEvent
	// Unsubscribe removes the sink only if it is still the one returned by
	// the matching Subscribe call.
	Unsubscribe(sessionID string, ch <-chan models.ProgressEvent)
	// Publish never blocks; events without a listener are dropped.
	Publish(sessionID string, phase models.ProgressPhase, progress int, message string)
	Close(sessionID string)
	CloseAfter(sessionID string, delay time.Duration)
}

type progressSink struct {
	ch   chan models.ProgressEvent
	last int
	mu   sync.Mutex
	done bool
}

type progressBroadcaster struct {
	mu       sync.Mutex
	sessions map[string]*progressSink
}

func NewProgressBroadcaster() ProgressBroadcaster {
	return &progressBroadcaster{
		sessions: make(map[string]*progressSink),
	}
}

// Subscribe implements ProgressBroadcaster.
func (b *progressBroadcaster) Subscribe(sessionID string) <-chan models.ProgressEvent {
	sink := &progressSink{ch: make(chan models.ProgressEvent, progressBuffer)}

	b.mu.Lock()
	previous := b.sessions[sessionID]
	if previous != nil {
		// A reconnecting client continues from what it has already seen
		sink.last = previous.lastProgress()
	}
	sink.push(models.ProgressEvent{
		SessionID: sessionID,
		Phase:     models.PhaseConnected,
		Progress:  0,
		Message:   "Connected",
	})
	b.sessions[sessionID] = sink
	b.mu.Unlock()

	if previous != nil {
		previous.close()
	}
	return sink.ch
}

// Unsubscribe implements ProgressBroadcaster.
func (b *progressBroadcaster) Unsubscribe(sessionID string, ch <-chan models.ProgressEvent) {
	b.mu.Lock()
	sink, ok := b.sessions[sessionID]
	if ok && (<-chan models.ProgressEvent)(sink.ch) == ch {
		delete(b.sessions, sessionID)
	} else {
		sink = nil
	}
	b.mu.Unlock()

	if sink != nil {
		sink.close()
	}
}

// Publish implements ProgressBroadcaster.
func (b *progressBroadcaster) Publish(sessionID string, phase models.ProgressPhase, progress int, message string) {
	if sessionID == "" {
		return
	}

	b.mu.Lock()
	sink := b.sessions[sessionID]
	b.mu.Unlock()

	if sink == nil {
		return
	}

	sink.push(models.ProgressEvent{
		SessionID: sessionID,
		Phase:     phase,
		Progress:  progress,
		Message:   message,
	})
}

// Close implements ProgressBroadcaster.
func (b *progressBroadcaster) Close(sessionID string) {
	b.mu.Lock()
	sink := b.sessions[sessionID]
	delete(b.sessions, sessionID)
	b.mu.Unlock()

	if sink != nil {
		sink.close()
	}
}

// CloseAfter implements ProgressBroadcaster. Only the sink present now is
// closed; a client that resubscribes in the meantime keeps its new sink.
func (b *progressBroadcaster) CloseAfter(sessionID string, delay time.Duration) {
	b.mu.Lock()
	sink := b.sessions[sessionID]
	b.mu.Unlock()

	if sink == nil {
		return
	}

	time.AfterFunc(delay, func() {
		b.Unsubscribe(sessionID, sink.ch)
	})
}

// push clamps progress so it never decreases within the session and drops
// the event if the subscriber is not keeping up.
func (s *progressSink) push(event models.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}

	if event.Progress < s.last {
		event.Progress = s.last
	}
	if event.Progress > 100 {
		event.Progress = 100
	}
	s.last = event.Progress

	select {
	case s.ch <- event:
	default:
	}
}

func (s *progressSink) lastProgress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *progressSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return
	}
	s.done = true
	close(s.ch)
}
