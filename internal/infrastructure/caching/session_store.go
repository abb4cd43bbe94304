// Package caching provides the in-memory session store holding each
// client's engine contexts.
package caching

import (
	"fmt"
	"sync"
	"time"

	"github.com/formweave/formweave-go/internal/domain/entities/session"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
)

// SessionStore keeps session contexts in memory, bounded by a session cap
// and swept by TTL.
type SessionStore struct {
	sessions    map[string]*session.Context
	mu          sync.RWMutex
	logger      *logging.ChanneledLogger
	maxSessions int
	ttl         time.Duration
	stopSweep   chan struct{}
	sweepOnce   sync.Once
}

// NewSessionStore creates a new session store
func NewSessionStore(maxSessions int, ttl time.Duration, logger *logging.ChanneledLogger) *SessionStore {
	if logger != nil {
		logger.Session().Info("Initializing session store", "maxSessions", maxSessions, "ttl", ttl)
	}
	return &SessionStore{
		sessions:    make(map[string]*session.Context),
		logger:      logger,
		maxSessions: maxSessions,
		ttl:         ttl,
		stopSweep:   make(chan struct{}),
	}
}

// Get retrieves a session context by ID
func (ss *SessionStore) Get(sessionID string) (*session.Context, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	ctx, exists := ss.sessions[sessionID]
	return ctx, exists
}

// GetOrCreate returns the session context for an ID, creating it on first
// use. Creation fails when the store is at capacity.
func (ss *SessionStore) GetOrCreate(sessionID string) (*session.Context, error) {
	ss.mu.RLock()
	if ctx, exists := ss.sessions[sessionID]; exists {
		ss.mu.RUnlock()
		ctx.Touch()
		return ctx, nil
	}
	ss.mu.RUnlock()

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ctx, exists := ss.sessions[sessionID]; exists {
		return ctx, nil
	}
	if ss.maxSessions > 0 && len(ss.sessions) >= ss.maxSessions {
		return nil, fmt.Errorf("session store at capacity (%d sessions)", ss.maxSessions)
	}
	ctx := session.NewContext(sessionID)
	ss.sessions[sessionID] = ctx
	if ss.logger != nil {
		ss.logger.Session().Debug("Session created", "sessionId", sessionID, "total", len(ss.sessions))
	}
	return ctx, nil
}

// Delete removes a session context
func (ss *SessionStore) Delete(sessionID string) {
	ss.mu.Lock()
	delete(ss.sessions, sessionID)
	ss.mu.Unlock()
	if ss.logger != nil {
		ss.logger.Session().Debug("Session deleted", "sessionId", sessionID)
	}
}

// Count returns the number of live sessions
func (ss *SessionStore) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// StartSweeper launches the background sweep loop that evicts sessions idle
// past the TTL
func (ss *SessionStore) StartSweeper(period time.Duration) {
	ss.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(period)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					ss.sweep()
				case <-ss.stopSweep:
					return
				}
			}
		}()
	})
}

// StopSweeper stops the background sweep loop
func (ss *SessionStore) StopSweeper() {
	close(ss.stopSweep)
}

func (ss *SessionStore) sweep() {
	start := time.Now()
	now := time.Now()

	ss.mu.Lock()
	var evicted int
	for id, ctx := range ss.sessions {
		if ctx.IdleSince(now) > ss.ttl {
			delete(ss.sessions, id)
			evicted++
		}
	}
	remaining := len(ss.sessions)
	ss.mu.Unlock()

	if ss.logger != nil && evicted > 0 {
		ss.logger.Session().Info("Session sweep completed",
			"evicted", evicted, "remaining", remaining, "duration", time.Since(start))
	}
}
