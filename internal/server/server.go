package server

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/shipkit/mission-control/internal/codebase"
	"github.com/shipkit/mission-control/internal/config"
	"github.com/shipkit/mission-control/internal/eventlog"
	"github.com/shipkit/mission-control/internal/health"
	"github.com/shipkit/mission-control/internal/inbox"
	"github.com/shipkit/mission-control/internal/metrics"
	"github.com/shipkit/mission-control/internal/recommend"
	"github.com/shipkit/mission-control/internal/registry"
	"github.com/shipkit/mission-control/internal/requestid"
)

// Server is the Mission Control HTTP application.
type Server struct {
	app      *fiber.App
	handlers *Handlers
	logger   zerolog.Logger
	cfg      *config.Config
}

// New creates and configures the server around the injected stores. The
// stores are process-wide state owned by main; the server never creates
// its own.
func New(
	cfg *config.Config,
	reg *registry.Registry,
	events *eventlog.Log,
	codebases *codebase.Store,
	engine *recommend.Engine,
	queue *inbox.Queue,
	checker *health.Checker,
	collector *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logger),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             cfg.MaxBodyBytes,
	})

	handlers := NewHandlers(reg, events, codebases, engine, queue, checker, collector, cfg.DashboardDir, logger)

	s := &Server{
		app:      app,
		handlers: handlers,
		logger:   logger.With().Str("component", "server").Logger(),
		cfg:      cfg,
	}

	s.setupMiddleware(collector, logger)
	s.setupRoutes(handlers, collector)

	return s
}

func (s *Server) setupMiddleware(collector *metrics.Metrics, logger zerolog.Logger) {
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	// Request ID middleware
	s.app.Use(func(c *fiber.Ctx) error {
		_, reqID := requestid.New(c.Context())
		c.Set("X-Request-ID", reqID)
		c.Locals("request_id", reqID)
		return c.Next()
	})

	// CORS is open by default: hooks and the dashboard run anywhere on the
	// operator's machine or local network.
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// Request logging + metrics; probes and polling endpoints are noisy.
	s.app.Use(func(c *fiber.Ctx) error {
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if collector != nil {
			collector.RecordRequest(c.Method(), path, strconv.Itoa(status))
		}

		if path == "/health" || path == "/metrics" || c.Method() == fiber.MethodGet {
			return err
		}
		logger.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Str("ip", c.IP()).
			Msg("api request")
		return err
	})
}

func (s *Server) setupRoutes(h *Handlers, collector *metrics.Metrics) {
	s.app.Get("/health", h.Health)

	if collector != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	s.app.Get("/api/instances", h.ListInstances)
	s.app.Get("/api/events", h.ListEvents)
	s.app.Post("/api/events", h.IngestEvent)
	s.app.Post("/api/command", h.EnqueueCommand)
	s.app.Get("/api/queue/:sessionId", h.QueueStatus)
	s.app.Get("/api/stats", h.Stats)
	s.app.Get("/api/codebases", h.ListCodebases)
	s.app.Get("/api/codebases/*", h.GetCodebase)
	s.app.Get("/api/quick-actions", h.QuickActions)
	s.app.Post("/api/recommendations", h.UpdateRecommendations)

	// Dashboard; unknown non-API GETs fall through to the SPA.
	s.app.Get("/", h.Dashboard)
	s.app.Get("/dashboard", h.Dashboard)
	s.app.Use(h.SPAFallback)
}

// Start starts the server. Blocks until stopped.
func (s *Server) Start() error {
	addr := s.cfg.ListenAddr()
	s.logger.Info().Str("addr", addr).Msg("mission control server starting")
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info().Msg("mission control server shutting down")
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("path", c.Path()).
			Str("method", c.Method()).
			Msg("unhandled error")

		return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
	}
}
