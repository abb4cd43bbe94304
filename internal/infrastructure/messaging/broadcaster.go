// Package messaging provides the session-scoped effect update broadcaster
// backing the websocket state stream.
package messaging

import (
	"encoding/json"
	"sync"

	"github.com/formweave/formweave-go/internal/domain/events"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
)

// EffectMessage is one websocket frame: the effect updates produced by a
// single change event against one form.
type EffectMessage struct {
	FormID  string                `json:"formId"`
	Updates []events.EffectUpdate `json:"updates"`
}

// Broadcaster manages session-specific subscriber channels. A session may
// hold several connections (multiple tabs); each gets its own channel.
type Broadcaster struct {
	sessions   map[string][]chan []byte
	mu         sync.Mutex
	logger     *logging.ChanneledLogger
	bufferSize int
}

// NewBroadcaster creates a broadcaster with the given per-client buffer size
func NewBroadcaster(bufferSize int, logger *logging.ChanneledLogger) *Broadcaster {
	return &Broadcaster{
		sessions:   make(map[string][]chan []byte),
		logger:     logger,
		bufferSize: bufferSize,
	}
}

// AddClient registers a new subscriber channel for a session
func (b *Broadcaster) AddClient(sessionID string) chan []byte {
	ch := make(chan []byte, b.bufferSize)

	b.mu.Lock()
	b.sessions[sessionID] = append(b.sessions[sessionID], ch)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.WS().Debug("Client registered", "sessionId", sessionID)
	}
	return ch
}

// RemoveClient unregisters a subscriber channel for a session
func (b *Broadcaster) RemoveClient(sessionID string, ch chan []byte) {
	b.mu.Lock()
	clients := b.sessions[sessionID]
	remaining := make([]chan []byte, 0, len(clients))
	for _, client := range clients {
		if client != ch {
			remaining = append(remaining, client)
		}
	}
	if len(remaining) == 0 {
		delete(b.sessions, sessionID)
	} else {
		b.sessions[sessionID] = remaining
	}
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.WS().Debug("Client unregistered", "sessionId", sessionID)
	}
}

// ConnectionCount returns the subscriber count for a session
func (b *Broadcaster) ConnectionCount(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions[sessionID])
}

// BroadcastEffects sends a change event's effect updates to every
// subscriber of the session. A slow subscriber's frame is dropped rather
// than blocking the evaluation path.
func (b *Broadcaster) BroadcastEffects(sessionID, formID string, updates []events.EffectUpdate) {
	if len(updates) == 0 {
		return
	}

	payload, err := json.Marshal(EffectMessage{FormID: formID, Updates: updates})
	if err != nil {
		if b.logger != nil {
			b.logger.WS().Error("Failed to encode effect message", "error", err, "sessionId", sessionID)
		}
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.sessions[sessionID] {
		select {
		case ch <- payload:
		default:
			if b.logger != nil {
				b.logger.WS().Warn("Subscriber buffer full, frame dropped", "sessionId", sessionID)
			}
		}
	}
}
