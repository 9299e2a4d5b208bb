// Package registry tracks live coding-assistant instances, keyed by
// session ID. Instances are derived entirely from ingested events and are
// never persisted: a restart rebuilds the registry from new traffic.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shipkit/mission-control/internal/models"
)

// Default thresholds for the periodic sweep.
const (
	DefaultStaleAfter = 5 * time.Minute
	DefaultEvictAfter = time.Hour
)

// Registry is the in-memory instance map. Safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	instances  map[string]*models.Instance
	staleAfter time.Duration
	evictAfter time.Duration
	logger     zerolog.Logger
}

// New creates an empty registry. Zero thresholds fall back to the defaults.
func New(staleAfter, evictAfter time.Duration, logger zerolog.Logger) *Registry {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if evictAfter <= 0 {
		evictAfter = DefaultEvictAfter
	}
	return &Registry{
		instances:  make(map[string]*models.Instance),
		staleAfter: staleAfter,
		evictAfter: evictAfter,
		logger:     logger.With().Str("component", "registry").Logger(),
	}
}

// Apply updates (or creates) the instance for the event's session.
//
// Status rules, in priority order: Stop marks the instance stopped and
// clears its mode; SessionStart marks it active, resets the tool counter
// and clears the mode; any other event marks it active. A mode field on
// the payload overrides the instance mode regardless of the event kind, so
// a session can enter standby without a session-level event.
func (r *Registry) Apply(ev models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inst, ok := r.instances[ev.SessionID]
	if !ok {
		inst = &models.Instance{
			SessionID:   ev.SessionID,
			Project:     ev.Project,
			ProjectPath: ev.ProjectPath,
			FirstSeen:   ev.Timestamp,
			Skills:      []string{},
		}
		r.instances[ev.SessionID] = inst
	}

	inst.LastSeen = ev.Timestamp
	inst.LastEvent = ev.Event
	inst.LastTool = ev.Tool
	inst.ToolCount++

	if ev.Skill != "" && !containsString(inst.Skills, ev.Skill) {
		inst.Skills = append(inst.Skills, ev.Skill)
	}

	switch ev.Event {
	case models.EventStop:
		inst.Status = models.StatusStopped
		inst.Mode = ""
	case models.EventSessionStart:
		inst.Status = models.StatusActive
		inst.ToolCount = 0
		inst.Mode = ""
	default:
		inst.Status = models.StatusActive
	}

	if ev.Mode != "" {
		inst.Mode = ev.Mode
	}
}

// Sweep flips instances unseen past the stale threshold to stale and
// removes those unseen past the eviction threshold. Stale is only ever
// assigned here, never during request handling.
func (r *Registry) Sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for sessionID, inst := range r.instances {
		idle := now.Sub(time.Unix(int64(inst.LastSeen), 0))
		if idle > r.evictAfter {
			delete(r.instances, sessionID)
			evicted++
			continue
		}
		if idle > r.staleAfter {
			inst.Status = models.StatusStale
		}
	}
	if evicted > 0 {
		r.logger.Debug().Int("evicted", evicted).Msg("evicted idle instances")
	}
}

// Run sweeps on the given interval until ctx-style cancellation via done.
func (r *Registry) Run(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Get returns a snapshot of one instance.
func (r *Registry) Get(sessionID string) (models.Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[sessionID]
	if !ok {
		return models.Instance{}, false
	}
	return snapshot(inst), true
}

// List returns snapshots of all instances, sorted by lastSeen descending.
func (r *Registry) List() []models.Instance {
	r.mu.RLock()
	out := make([]models.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		out = append(out, snapshot(inst))
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastSeen > out[j].LastSeen
	})
	return out
}

// Count returns the number of tracked instances.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// ActiveCount returns the number of instances currently marked active.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, inst := range r.instances {
		if inst.Status == models.StatusActive {
			n++
		}
	}
	return n
}

func snapshot(inst *models.Instance) models.Instance {
	out := *inst
	out.Skills = append([]string(nil), inst.Skills...)
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
