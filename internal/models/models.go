// Package models defines the wire and storage types shared across the
// Mission Control server: events reported by hooks, live instances, and
// per-project codebase analytics.
package models

import "encoding/json"

// InstanceStatus is the derived lifecycle state of an instance.
type InstanceStatus string

const (
	StatusActive  InstanceStatus = "active"
	StatusStale   InstanceStatus = "stale"
	StatusStopped InstanceStatus = "stopped"
)

// Well-known event kinds reported by the hooks.
const (
	EventSessionStart = "SessionStart"
	EventStop         = "Stop"
)

// ModeStandby is the only operating mode instances currently report.
const ModeStandby = "standby"

// Event is one activity report from a hook. Immutable once ingested.
type Event struct {
	SessionID   string  `json:"sessionId"`
	Project     string  `json:"project"`
	ProjectPath string  `json:"projectPath"`
	Event       string  `json:"event"`
	Tool        string  `json:"tool,omitempty"`
	Skill       string  `json:"skill,omitempty"`
	Timestamp   float64 `json:"timestamp"` // unix seconds, client-supplied
	Mode        string  `json:"mode,omitempty"`

	// Artifacts optionally carries analysis documents keyed by filename.
	Artifacts map[string]json.RawMessage `json:"artifacts,omitempty"`

	// ReceivedAt is assigned by the server on ingestion (ms epoch).
	ReceivedAt int64 `json:"receivedAt,omitempty"`
}

// Instance is the live view of one coding-assistant session. In-memory
// only; rebuilt from events after a restart.
type Instance struct {
	SessionID   string         `json:"sessionId"`
	Project     string         `json:"project"`
	ProjectPath string         `json:"projectPath"`
	FirstSeen   float64        `json:"firstSeen"`
	LastSeen    float64        `json:"lastSeen"`
	LastEvent   string         `json:"lastEvent"`
	LastTool    string         `json:"lastTool,omitempty"`
	ToolCount   int            `json:"toolCount"`
	Skills      []string       `json:"skills"`
	Status      InstanceStatus `json:"status"`
	Mode        string         `json:"mode,omitempty"`
}

// SkillUsage tracks one skill's usage history within a codebase.
// Counters are monotonic for the lifetime of the record.
type SkillUsage struct {
	Name      string  `json:"name"`
	FirstUsed float64 `json:"firstUsed"`
	LastUsed  float64 `json:"lastUsed"`
	UseCount  int     `json:"useCount"`
}

// ClaudeRecommendations is an externally computed recommendation set.
// While fresh (analyzedAt within the last hour) it takes priority over the
// engine's own derivation.
type ClaudeRecommendations struct {
	Recommendations []Recommendation `json:"recommendations"`
	Source          string           `json:"source"`
	AnalyzedAt      string           `json:"analyzedAt"` // RFC 3339
}

// Recommendation is one suggested next action for a codebase.
type Recommendation struct {
	Type     string `json:"type"` // stale | suggested | missing
	Skill    string `json:"skill"`
	Message  string `json:"message"`
	Priority string `json:"priority"` // high | medium | low
	Action   string `json:"action"`
	Source   string `json:"source"`
}

// QuickAction is a one-click skill shortcut offered to the dashboard.
type QuickAction struct {
	Skill string `json:"skill"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Codebase aggregates skill usage and artifacts for one monitored project.
// Persisted as a single JSON file per projectPath.
type Codebase struct {
	ProjectPath    string                     `json:"projectPath"`
	ProjectName    string                     `json:"projectName"`
	FirstSeen      float64                    `json:"firstSeen"`
	LastActivity   float64                    `json:"lastActivity"`
	Skills         map[string]*SkillUsage     `json:"skills"`
	TotalSkillUses int                        `json:"totalSkillUses"`
	Artifacts      map[string]json.RawMessage `json:"artifacts,omitempty"`

	ClaudeRecommendations *ClaudeRecommendations `json:"claudeRecommendations,omitempty"`
}

// Clone returns a deep-enough copy safe to hand to encoders outside the
// store's lock. Raw JSON blobs are shared; they are never mutated in place.
func (c *Codebase) Clone() *Codebase {
	out := *c
	out.Skills = make(map[string]*SkillUsage, len(c.Skills))
	for name, su := range c.Skills {
		cp := *su
		out.Skills[name] = &cp
	}
	if c.Artifacts != nil {
		out.Artifacts = make(map[string]json.RawMessage, len(c.Artifacts))
		for name, doc := range c.Artifacts {
			out.Artifacts[name] = doc
		}
	}
	if c.ClaudeRecommendations != nil {
		cr := *c.ClaudeRecommendations
		cr.Recommendations = append([]Recommendation(nil), c.ClaudeRecommendations.Recommendations...)
		out.ClaudeRecommendations = &cr
	}
	return &out
}

// Command is the payload written into a session's inbox for an external
// consumer to pick up.
type Command struct {
	Prompt    string `json:"prompt"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"` // ms epoch
}

// QueueEntry is one command file as reported by the queue status endpoint.
type QueueEntry struct {
	CommandID string `json:"commandId"`
	Prompt    string `json:"prompt"`
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
}
