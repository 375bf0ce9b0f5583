package httpserver

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"auctionhouse/internal/shared/logger"
)

var log = logger.GetLogger()

type Server struct {
	app *fiber.App
}

// NewServer builds the Fiber app with logging and CORS middleware and
// the health route. Module handlers register their routes on App().
func NewServer(allowedOrigins []string) *Server {
	app := fiber.New(fiber.Config{
		AppName: "auctionhouse",
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(allowedOrigins, ","),
	}))

	app.Use(func(c *fiber.Ctx) error {
		log.Info("HTTP request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("remote_addr", c.IP()),
		)
		return c.Next()
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	return &Server{app: app}
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on addr and shuts down cleanly on interrupt.
func (s *Server) Start(addr string) error {
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt)
		<-quit

		log.Info("Shutting down HTTP server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.app.ShutdownWithContext(ctx)
	}()

	log.Info("HTTP server started", zap.String("addr", addr))
	return s.app.Listen(addr)
}
