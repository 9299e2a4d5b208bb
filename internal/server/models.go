// Package server binds the Mission Control stores to the HTTP surface the
// hooks and the dashboard consume.
package server

import (
	"github.com/shipkit/mission-control/internal/inbox"
	"github.com/shipkit/mission-control/internal/models"
)

// ErrorResponse is the JSON body for every error status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

// InstancesResponse is the body of GET /api/instances.
type InstancesResponse struct {
	Instances []models.Instance `json:"instances"`
}

// EventsResponse is the body of GET /api/events.
type EventsResponse struct {
	Events []models.Event `json:"events"`
}

// IngestResponse is the body of POST /api/events.
type IngestResponse struct {
	Received bool `json:"received"`
}

// CommandRequest is the payload of POST /api/command.
type CommandRequest struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
	Source    string `json:"source,omitempty"`
}

// CommandResponse is the body of POST /api/command.
type CommandResponse struct {
	Queued    bool   `json:"queued"`
	SessionID string `json:"sessionId"`
	CommandID string `json:"commandId"`
}

// QueueResponse is the body of GET /api/queue/:sessionId.
type QueueResponse struct {
	SessionID string `json:"sessionId"`
	inbox.Status
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	TotalInstances  int     `json:"totalInstances"`
	ActiveInstances int     `json:"activeInstances"`
	TotalCodebases  int     `json:"totalCodebases"`
	TotalEvents     int     `json:"totalEvents"`
	Uptime          float64 `json:"uptime"`
}

// CodebaseView is a codebase record enriched with derived fields for the
// dashboard. The derived fields are never persisted.
type CodebaseView struct {
	*models.Codebase
	Recommendations []models.Recommendation `json:"recommendations"`
	QuickActions    []models.QuickAction    `json:"quickActions"`
	SkillCount      int                     `json:"skillCount"`
}

// CodebasesResponse is the body of GET /api/codebases.
type CodebasesResponse struct {
	Codebases []CodebaseView `json:"codebases"`
}

// QuickActionsResponse is the body of GET /api/quick-actions.
type QuickActionsResponse struct {
	Actions []models.QuickAction `json:"actions"`
}

// RecommendationsRequest is the payload of POST /api/recommendations.
type RecommendationsRequest struct {
	ProjectPath     string                  `json:"projectPath"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Source          string                  `json:"source,omitempty"`
	AnalyzedAt      string                  `json:"analyzedAt,omitempty"`
}

// RecommendationsResponse is the body of POST /api/recommendations.
type RecommendationsResponse struct {
	Updated     bool   `json:"updated"`
	ProjectPath string `json:"projectPath"`
}
