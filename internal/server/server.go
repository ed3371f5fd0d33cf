package server

import (
	"log"

	"ai-helpdesk-be/internal/bootstrap"
	"ai-helpdesk-be/internal/config"
	"ai-helpdesk-be/internal/pkg/serverutils"
	ws "ai-helpdesk-be/internal/websocket"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.ConversationController.RegisterRoutes(api)
	c.TicketController.RegisterRoutes(api)
	c.KnowledgeController.RegisterRoutes(api)
	c.AgentAuthController.RegisterRoutes(api)

	registerAlertSocket(app, c)
}

// registerAlertSocket exposes the agent alert stream. The upgrade is
// gated by the same JWT middleware as the REST agent surface.
func registerAlertSocket(app *fiber.App, c *bootstrap.Container) {
	alerts := app.Group("/ws", serverutils.JwtMiddleware)

	alerts.Use("/alerts", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			ctx.Locals("allowed", true)
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	alerts.Get("/alerts", websocket.New(func(conn *websocket.Conn) {
		raw, _ := conn.Locals("agent_id").(string)
		agentID, err := uuid.Parse(raw)
		if err != nil {
			conn.Close()
			return
		}
		ws.ServeWs(c.WebSocketHub, conn, agentID)
	}))
}
