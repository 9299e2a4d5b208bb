package server

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/shipkit/mission-control/internal/codebase"
	"github.com/shipkit/mission-control/internal/eventlog"
	"github.com/shipkit/mission-control/internal/health"
	"github.com/shipkit/mission-control/internal/inbox"
	"github.com/shipkit/mission-control/internal/metrics"
	"github.com/shipkit/mission-control/internal/models"
	"github.com/shipkit/mission-control/internal/recommend"
	"github.com/shipkit/mission-control/internal/registry"
)

// Handlers holds dependencies for the HTTP handlers.
type Handlers struct {
	registry  *registry.Registry
	events    *eventlog.Log
	codebases *codebase.Store
	engine    *recommend.Engine
	queue     *inbox.Queue
	checker   *health.Checker
	metrics   *metrics.Metrics

	dashboardDir string
	logger       zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	reg *registry.Registry,
	events *eventlog.Log,
	codebases *codebase.Store,
	engine *recommend.Engine,
	queue *inbox.Queue,
	checker *health.Checker,
	collector *metrics.Metrics,
	dashboardDir string,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		registry:     reg,
		events:       events,
		codebases:    codebases,
		engine:       engine,
		queue:        queue,
		checker:      checker,
		metrics:      collector,
		dashboardDir: dashboardDir,
		logger:       logger.With().Str("component", "handlers").Logger(),
	}
}

// Health handles GET /health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	status := "ok"
	if !h.checker.IsHealthy(c.Context()) {
		status = "degraded"
	}
	return c.JSON(HealthResponse{
		Status: status,
		Uptime: h.checker.Uptime(),
	})
}

// ListInstances handles GET /api/instances.
func (h *Handlers) ListInstances(c *fiber.Ctx) error {
	instances := h.registry.List()
	if instances == nil {
		instances = []models.Instance{}
	}
	return c.JSON(InstancesResponse{Instances: instances})
}

// ListEvents handles GET /api/events.
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	sessionID := c.Query("sessionId")
	return c.JSON(EventsResponse{Events: h.events.Recent(limit, sessionID)})
}

// IngestEvent handles POST /api/events. Ingestion order: registry, then
// codebase analytics (and artifacts), then the durable event log.
func (h *Handlers) IngestEvent(c *fiber.Ctx) error {
	var ev models.Event
	if err := c.BodyParser(&ev); err != nil {
		// Hooks deliver fire-and-forget; a malformed body is a server-visible
		// failure, not a negotiation.
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "invalid JSON body: " + err.Error()})
	}

	h.registry.Apply(ev)

	if ev.ProjectPath != "" {
		if err := h.codebases.Update(ev.ProjectPath, ev.Project, ev.Skill, ev.Timestamp); err != nil {
			h.logger.Warn().Err(err).Str("project_path", ev.ProjectPath).Msg("codebase update not persisted")
			h.metrics.RecordError("codebase", "persist")
		}
		if len(ev.Artifacts) > 0 {
			if err := h.codebases.MergeArtifacts(ev.ProjectPath, ev.Artifacts); err != nil {
				h.logger.Warn().Err(err).Str("project_path", ev.ProjectPath).Msg("artifacts not persisted")
				h.metrics.RecordError("codebase", "persist")
			}
		}
	}

	if err := h.events.Append(ev); err != nil {
		h.logger.Warn().Err(err).Msg("event not persisted")
		h.metrics.RecordError("eventlog", "persist")
	}

	h.metrics.RecordEvent(ev.Event)
	h.metrics.SetGauges(h.registry.Count(), h.registry.ActiveCount(), h.codebases.Count())

	return c.JSON(IngestResponse{Received: true})
}

// EnqueueCommand handles POST /api/command.
func (h *Handlers) EnqueueCommand(c *fiber.Ctx) error {
	var req CommandRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid JSON body: " + err.Error()})
	}
	if req.SessionID == "" || req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "sessionId and prompt required"})
	}

	commandID, err := h.queue.Enqueue(req.SessionID, req.Prompt, req.Source)
	if err != nil {
		h.metrics.RecordError("inbox", "enqueue")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	h.metrics.RecordCommand(orDefault(req.Source, inbox.DefaultSource))
	return c.JSON(CommandResponse{Queued: true, SessionID: req.SessionID, CommandID: commandID})
}

// QueueStatus handles GET /api/queue/:sessionId.
func (h *Handlers) QueueStatus(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	return c.JSON(QueueResponse{
		SessionID: sessionID,
		Status:    h.queue.SessionStatus(sessionID),
	})
}

// Stats handles GET /api/stats.
func (h *Handlers) Stats(c *fiber.Ctx) error {
	h.metrics.SetGauges(h.registry.Count(), h.registry.ActiveCount(), h.codebases.Count())
	return c.JSON(StatsResponse{
		TotalInstances:  h.registry.Count(),
		ActiveInstances: h.registry.ActiveCount(),
		TotalCodebases:  h.codebases.Count(),
		TotalEvents:     h.events.Len(),
		Uptime:          h.checker.Uptime(),
	})
}

// ListCodebases handles GET /api/codebases.
func (h *Handlers) ListCodebases(c *fiber.Ctx) error {
	list := h.codebases.List()
	views := make([]CodebaseView, 0, len(list))
	for _, cb := range list {
		views = append(views, h.view(cb))
	}
	return c.JSON(CodebasesResponse{Codebases: views})
}

// GetCodebase handles GET /api/codebases/*. The wildcard is the
// URL-encoded project path.
func (h *Handlers) GetCodebase(c *fiber.Ctx) error {
	raw := c.Params("*")
	projectPath, err := url.QueryUnescape(raw)
	if err != nil {
		projectPath = raw
	}

	cb, ok := h.codebases.Get(projectPath)
	if !ok && !strings.HasPrefix(projectPath, "/") {
		// Path normalization can strip the leading slash of an encoded
		// absolute path before routing.
		cb, ok = h.codebases.Get("/" + projectPath)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Codebase not found"})
	}
	return c.JSON(h.view(cb))
}

// QuickActions handles GET /api/quick-actions.
func (h *Handlers) QuickActions(c *fiber.Ctx) error {
	sessionID := c.Query("sessionId")

	var cb *models.Codebase
	if inst, ok := h.registry.Get(sessionID); ok {
		cb, _ = h.codebases.Get(inst.ProjectPath)
	}
	return c.JSON(QuickActionsResponse{Actions: recommend.QuickActions(cb)})
}

// UpdateRecommendations handles POST /api/recommendations. It attaches an
// externally computed recommendation set, creating the codebase if needed.
func (h *Handlers) UpdateRecommendations(c *fiber.Ctx) error {
	var req RecommendationsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid JSON body: " + err.Error()})
	}
	if req.ProjectPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "projectPath required"})
	}

	if err := h.codebases.SetClaudeRecommendations(req.ProjectPath, req.Recommendations, req.Source, req.AnalyzedAt); err != nil {
		h.metrics.RecordError("codebase", "persist")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(RecommendationsResponse{Updated: true, ProjectPath: req.ProjectPath})
}

// Dashboard handles GET / and GET /dashboard: the built bundle when
// present, the embedded fallback page otherwise.
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	index := filepath.Join(h.dashboardDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		return c.SendFile(index)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(fallbackDashboard)
}

// SPAFallback routes any unknown non-API GET to the dashboard so client
// side routing keeps working after a reload.
func (h *Handlers) SPAFallback(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet && !strings.HasPrefix(c.Path(), "/api/") {
		// Serve bundle assets next to index.html when they exist.
		asset := filepath.Join(h.dashboardDir, filepath.Clean("/"+c.Path()))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			return c.SendFile(asset)
		}
		return h.Dashboard(c)
	}
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Not found"})
}

func (h *Handlers) view(cb *models.Codebase) CodebaseView {
	return CodebaseView{
		Codebase:        cb,
		Recommendations: h.engine.Recommend(cb),
		QuickActions:    recommend.QuickActions(cb),
		SkillCount:      len(cb.Skills),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
