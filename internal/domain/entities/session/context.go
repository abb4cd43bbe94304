// Package session provides domain entities for engine session management.
// A session holds the per-client form states the engine evaluates against.
package session

import (
	"sync"
	"time"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
)

// Context is the engine context of one client session. Form states are
// keyed by form ID; all access to a context's states goes through its lock,
// so evaluation and structural rebuilds are atomic per session.
type Context struct {
	SessionID    string
	CreatedAt    time.Time
	LastAccessed time.Time

	mu         sync.Mutex
	formStates map[string]*forms.FormState
}

// NewContext creates a new session context
func NewContext(sessionID string) *Context {
	now := time.Now()
	return &Context{
		SessionID:    sessionID,
		CreatedAt:    now,
		LastAccessed: now,
		formStates:   make(map[string]*forms.FormState),
	}
}

// Touch updates the session access time
func (c *Context) Touch() {
	c.mu.Lock()
	c.LastAccessed = time.Now()
	c.mu.Unlock()
}

// FormState returns the session's state for a form
func (c *Context) FormState(formID string) (*forms.FormState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.formStates[formID]
	return state, ok
}

// SetFormState stores the session's state for a form, replacing any prior
// state wholesale
func (c *Context) SetFormState(formID string, state *forms.FormState) {
	c.mu.Lock()
	c.formStates[formID] = state
	c.LastAccessed = time.Now()
	c.mu.Unlock()
}

// WithFormState runs fn while holding the session lock, giving it exclusive
// access to the form state. Evaluation and rebuilds use this so a session's
// state never changes mid-pass.
func (c *Context) WithFormState(formID string, fn func(state *forms.FormState) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.formStates[formID]
	if !ok {
		return ErrNoFormState
	}
	c.LastAccessed = time.Now()
	return fn(state)
}

// FormIDs returns the form IDs this session holds state for
func (c *Context) FormIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.formStates))
	for id := range c.formStates {
		ids = append(ids, id)
	}
	return ids
}

// IdleSince reports how long the session has been idle
func (c *Context) IdleSince(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.LastAccessed)
}
