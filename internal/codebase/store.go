// Package codebase aggregates per-project skill usage, artifacts, and
// externally supplied recommendations. Every mutation persists the full
// record to one JSON file per project, so a restart loses nothing.
package codebase

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	mcerrors "github.com/shipkit/mission-control/internal/errors"
	"github.com/shipkit/mission-control/internal/models"
)

// Artifact documents must carry these fields; absences are recorded as
// validation warnings next to the stored blob, not rejected.
var artifactRequiredFields = []string{"type", "version", "summary"}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// Store is the codebase analytics store. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	dir       string
	codebases map[string]*models.Codebase // keyed by projectPath
	logger    zerolog.Logger
}

// New creates the store backed by one JSON file per codebase under dir and
// loads every persisted record. Corrupt or unreadable files are skipped.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, mcerrors.NewStoreError("codebase", "init", dir, err)
	}
	s := &Store{
		dir:       dir,
		codebases: make(map[string]*models.Codebase),
		logger:    logger.With().Str("component", "codebase_store").Logger(),
	}
	s.load()
	return s, nil
}

func (s *Store) load() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to list codebase dir")
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable codebase file")
			continue
		}
		var cb models.Codebase
		if err := json.Unmarshal(data, &cb); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping corrupt codebase file")
			continue
		}
		if cb.Skills == nil {
			cb.Skills = make(map[string]*models.SkillUsage)
		}
		s.codebases[cb.ProjectPath] = &cb
	}
	s.logger.Info().Int("codebases", len(s.codebases)).Msg("loaded codebases from disk")
}

// Update creates or updates the codebase for projectPath, bumps its
// lastActivity, and if skill is non-empty increments that skill's counters
// and the project total. The record is persisted before returning.
func (s *Store) Update(projectPath, projectName, skill string, timestamp float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cb := s.getOrCreateLocked(projectPath, projectName, timestamp)
	cb.LastActivity = timestamp
	if projectName != "" {
		cb.ProjectName = projectName
	}

	if skill != "" {
		su, ok := cb.Skills[skill]
		if !ok {
			su = &models.SkillUsage{Name: skill, FirstUsed: timestamp}
			cb.Skills[skill] = su
		}
		su.LastUsed = timestamp
		su.UseCount++
		cb.TotalSkillUses++
	}

	return s.persistLocked(cb)
}

// MergeArtifacts attaches artifact documents to an existing codebase. It is
// a no-op when the codebase is unknown: artifacts only attach to projects
// we have already seen events for. Each document is validated for the
// required fields and stored verbatim, wholesale per filename, annotated
// with the receive time and any validation warnings.
func (s *Store) MergeArtifacts(projectPath string, artifacts map[string]json.RawMessage) error {
	if len(artifacts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cb, ok := s.codebases[projectPath]
	if !ok {
		return nil
	}
	if cb.Artifacts == nil {
		cb.Artifacts = make(map[string]json.RawMessage, len(artifacts))
	}

	receivedAt := time.Now().UnixMilli()
	for name, doc := range artifacts {
		cb.Artifacts[name] = annotateArtifact(doc, receivedAt)
	}

	return s.persistLocked(cb)
}

// annotateArtifact decorates the raw document with _receivedAt and, when
// required fields are missing, _validationWarnings. A document that is not
// a JSON object is stored with a single warning and no field checks.
func annotateArtifact(doc json.RawMessage, receivedAt int64) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		fields = map[string]json.RawMessage{
			"_raw": doc,
		}
		fields["_validationWarnings"] = mustRaw([]string{"artifact is not a JSON object"})
		fields["_receivedAt"] = mustRaw(receivedAt)
		out, _ := json.Marshal(fields)
		return out
	}

	var warnings []string
	for _, field := range artifactRequiredFields {
		if _, ok := fields[field]; !ok {
			warnings = append(warnings, "missing required field: "+field)
		}
	}
	fields["_receivedAt"] = mustRaw(receivedAt)
	if len(warnings) > 0 {
		fields["_validationWarnings"] = mustRaw(warnings)
	}
	out, _ := json.Marshal(fields)
	return out
}

// SetClaudeRecommendations attaches an externally computed recommendation
// set, creating the codebase if it does not exist yet.
func (s *Store) SetClaudeRecommendations(projectPath string, recs []models.Recommendation, source, analyzedAt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := float64(time.Now().Unix())
	cb := s.getOrCreateLocked(projectPath, filepath.Base(projectPath), now)

	if recs == nil {
		recs = []models.Recommendation{}
	}
	if source == "" {
		source = "claude-analysis"
	}
	if analyzedAt == "" {
		analyzedAt = time.Now().Format(time.RFC3339)
	}
	cb.ClaudeRecommendations = &models.ClaudeRecommendations{
		Recommendations: recs,
		Source:          source,
		AnalyzedAt:      analyzedAt,
	}

	return s.persistLocked(cb)
}

// Get returns a copy of one codebase.
func (s *Store) Get(projectPath string) (*models.Codebase, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cb, ok := s.codebases[projectPath]
	if !ok {
		return nil, false
	}
	return cb.Clone(), true
}

// List returns copies of all codebases, sorted by lastActivity descending.
func (s *Store) List() []*models.Codebase {
	s.mu.RLock()
	out := make([]*models.Codebase, 0, len(s.codebases))
	for _, cb := range s.codebases {
		out = append(out, cb.Clone())
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity > out[j].LastActivity
	})
	return out
}

// Count returns the number of known codebases.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codebases)
}

func (s *Store) getOrCreateLocked(projectPath, projectName string, timestamp float64) *models.Codebase {
	cb, ok := s.codebases[projectPath]
	if !ok {
		cb = &models.Codebase{
			ProjectPath:  projectPath,
			ProjectName:  projectName,
			FirstSeen:    timestamp,
			LastActivity: timestamp,
			Skills:       make(map[string]*models.SkillUsage),
		}
		s.codebases[projectPath] = cb
	}
	return cb
}

func (s *Store) persistLocked(cb *models.Codebase) error {
	data, err := json.MarshalIndent(cb, "", "  ")
	if err != nil {
		return mcerrors.NewStoreError("codebase", "encode", cb.ProjectPath, err)
	}
	path := filepath.Join(s.dir, SafeFileName(cb.ProjectName)+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return mcerrors.NewStoreError("codebase", "persist", path, err)
	}
	return nil
}

// SafeFileName transforms a project name into a filesystem-safe file stem.
func SafeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

func mustRaw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
