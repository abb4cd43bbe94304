package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
)

// FormService owns the form definitions and builds engine states from them.
// Definitions are JSON documents under the forms directory, loaded at
// startup and kept in memory; editor mutations write through to disk.
type FormService struct {
	dir        string
	logger     *logging.ChanneledLogger
	mu         sync.RWMutex
	definition map[string]*forms.FormDefinition
}

// NewFormService creates a form service over the given definitions directory
func NewFormService(dir string, logger *logging.ChanneledLogger) *FormService {
	return &FormService{
		dir:        dir,
		logger:     logger,
		definition: make(map[string]*forms.FormDefinition),
	}
}

// LoadAll reads every *.json definition in the forms directory
func (s *FormService) LoadAll() error {
	start := time.Now()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			if s.logger != nil {
				s.logger.System().Warn("Forms directory does not exist, starting empty", "dir", s.dir)
			}
			return nil
		}
		return fmt.Errorf("failed to read forms directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read form definition %s: %w", entry.Name(), err)
		}
		def, err := forms.ParseFormDefinition(data)
		if err != nil {
			return fmt.Errorf("invalid form definition %s: %w", entry.Name(), err)
		}
		if def.ID == "" {
			def.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		s.mu.Lock()
		s.definition[def.ID] = def
		s.mu.Unlock()
		loaded++
	}

	if s.logger != nil {
		s.logger.System().Info("Form definitions loaded", "count", loaded, "duration", time.Since(start))
	}
	return nil
}

// Get returns a form definition by ID
func (s *FormService) Get(formID string) (*forms.FormDefinition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.definition[formID]
	return def, ok
}

// IDs returns the loaded form IDs
func (s *FormService) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.definition))
	for id := range s.definition {
		ids = append(ids, id)
	}
	return ids
}

// Save validates and stores a definition, writing it through to disk
func (s *FormService) Save(def *forms.FormDefinition, raw []byte) error {
	if def.ID == "" {
		return fmt.Errorf("form definition is missing an id")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create forms directory: %w", err)
	}
	path := filepath.Join(s.dir, def.ID+".json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write form definition: %w", err)
	}

	s.mu.Lock()
	s.definition[def.ID] = def
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.System().Info("Form definition saved", "formId", def.ID)
	}
	return nil
}

// Delete removes a definition from memory and disk
func (s *FormService) Delete(formID string) error {
	s.mu.Lock()
	_, ok := s.definition[formID]
	delete(s.definition, formID)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown form %q", formID)
	}

	path := filepath.Join(s.dir, formID+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove form definition: %w", err)
	}
	return nil
}

// BuildState contextualizes a definition against form data and builds the
// condition graph. The initial evaluation pass is the caller's
// responsibility, so build and pass stay in one critical section.
func (s *FormService) BuildState(def *forms.FormDefinition, data forms.FormData) (*forms.FormState, error) {
	start := time.Now()

	if data == nil {
		data = make(forms.FormData)
	}
	registry, decls := forms.Contextualize(def, data)
	graph, err := forms.BuildConditionGraph(registry, decls)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Graph().Debug("Condition graph built",
			"formId", def.ID,
			"elements", len(registry.ByID),
			"duration", time.Since(start))
	}
	return &forms.FormState{
		FormID:   def.ID,
		Registry: registry,
		Graph:    graph,
		Data:     data,
	}, nil
}
