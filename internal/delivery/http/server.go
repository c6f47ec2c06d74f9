package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/notemap-service/internal/config"
	"github.com/notemap-service/internal/delivery/http/handler"
	"github.com/notemap-service/internal/delivery/http/middleware"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server is the Fiber HTTP server in front of the map pipeline.
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	postHandler    *handler.PostHandler
	mapViewHandler *handler.MapViewHandler
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	postHandler *handler.PostHandler,
	mapViewHandler *handler.MapViewHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "NoteMap Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		postHandler:    postHandler,
		mapViewHandler: mapViewHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Raw post store
	api.Get("/posts", s.postHandler.List)
	api.Get("/posts/categories", s.postHandler.Categories)
	api.Get("/posts/:id", s.postHandler.Get)
	api.Post("/posts/:id/good", s.postHandler.Approve)

	// Map view sessions: one per open map, events mutate filter/selection
	// state and every response is the updated render model.
	sessions := api.Group("/map/sessions")
	sessions.Post("/", s.mapViewHandler.Open)
	sessions.Get("/:id/view", s.mapViewHandler.View)
	sessions.Delete("/:id", s.mapViewHandler.Close)
	sessions.Post("/:id/category", s.mapViewHandler.SetCategory)
	sessions.Post("/:id/select", s.mapViewHandler.Select)
	sessions.Post("/:id/deselect", s.mapViewHandler.Deselect)
	sessions.Post("/:id/position", s.mapViewHandler.SetPosition)
	sessions.Post("/:id/position-error", s.mapViewHandler.PositionError)
	sessions.Post("/:id/good", s.mapViewHandler.Approve)
}

func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
