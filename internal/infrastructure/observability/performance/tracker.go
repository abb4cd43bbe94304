// Package performance provides performance tracking and monitoring
// capabilities for FormWeave operations with real-time metrics.
package performance

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker // Active and completed markers by unique ID
	mu      sync.RWMutex       // Protects concurrent access
	started time.Time          // When tracking started
	config  *TrackerConfig     // Tracker configuration
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers            int           `json:"maxMarkers"`            // Maximum number of markers to retain
	SlowOperationWarnOver time.Duration `json:"slowOperationWarnOver"` // Duration above which an operation counts as slow
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:            10000,
		SlowOperationWarnOver: 500 * time.Millisecond,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers: make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, formID string) *Marker {
	marker := &Marker{
		Operation: operation,
		FormID:    formID,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true, // Assume success until proven otherwise
	}

	markerID := fmt.Sprintf("%s_%s_%d", formID, operation, time.Now().UnixNano())

	t.mu.Lock()
	t.markers[markerID] = marker
	if len(t.markers) > t.config.MaxMarkers {
		t.evictOldestLocked()
	}
	t.mu.Unlock()

	return marker
}

// evictOldestLocked drops the oldest tracked marker. Caller holds the lock.
func (t *Tracker) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, m := range t.markers {
		if oldestID == "" || m.StartTime.Before(oldest) {
			oldestID = id
			oldest = m.StartTime
		}
	}
	if oldestID != "" {
		delete(t.markers, oldestID)
	}
}

// OperationStats aggregates the tracked markers for one operation name.
type OperationStats struct {
	Operation     string        `json:"operation"`
	Count         int           `json:"count"`
	Failures      int           `json:"failures"`
	SlowCount     int           `json:"slowCount"`
	TotalDuration time.Duration `json:"totalDuration"`
	MaxDuration   time.Duration `json:"maxDuration"`
	AvgDuration   time.Duration `json:"avgDuration"`
}

// Stats returns aggregated statistics grouped by operation name.
func (t *Tracker) Stats() map[string]*OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats := make(map[string]*OperationStats)
	for _, m := range t.markers {
		if !m.Completed {
			continue
		}
		s, ok := stats[m.Operation]
		if !ok {
			s = &OperationStats{Operation: m.Operation}
			stats[m.Operation] = s
		}
		s.Count++
		if !m.Success {
			s.Failures++
		}
		if m.Duration > t.config.SlowOperationWarnOver {
			s.SlowCount++
		}
		s.TotalDuration += m.Duration
		if m.Duration > s.MaxDuration {
			s.MaxDuration = m.Duration
		}
	}
	for _, s := range stats {
		if s.Count > 0 {
			s.AvgDuration = s.TotalDuration / time.Duration(s.Count)
		}
	}
	return stats
}

// StatsFor returns aggregated statistics for operations whose name contains
// the given fragment, e.g. "state" or "graph".
func (t *Tracker) StatsFor(fragment string) map[string]*OperationStats {
	all := t.Stats()
	matched := make(map[string]*OperationStats)
	for op, s := range all {
		if strings.Contains(op, fragment) {
			matched[op] = s
		}
	}
	return matched
}

// Uptime returns how long this tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
