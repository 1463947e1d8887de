package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
)

// StreamManager fans phase events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
	closed      bool
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel. The returned func unregisters and
// closes it. After Close the channel comes back already closed.
func (sm *StreamManager) Subscribe() (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if sm.closed {
		close(ch)
		return ch, func() {}
	}
	sm.subscribers[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if _, ok := sm.subscribers[ch]; ok {
				delete(sm.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Close ends every open stream and refuses new ones. Pass it to
// http.Server.RegisterOnShutdown: Shutdown does not cancel the request
// contexts of long-lived SSE handlers.
func (sm *StreamManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.closed = true
	for ch := range sm.subscribers {
		delete(sm.subscribers, ch)
		close(ch)
	}
}

// Count returns the number of connected streams.
func (sm *StreamManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}

// Broadcast delivers msg to every subscriber without blocking.
func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client: drop rather than stall the session loop.
			sm.logger.Warn("SSE: client buffer full, dropping event")
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE of phase changes).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	s.logger.Info("SSE: client connected")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: phase\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
