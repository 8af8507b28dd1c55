package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"vidcheck/internal/config"
	"vidcheck/internal/logging"
	"vidcheck/internal/pipeline"
)

// Checker runs one check. *pipeline.Runner satisfies it.
type Checker interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Report, error)
}

// Server is the vidcheck HTTP API.
type Server struct {
	app       *fiber.App
	checker   Checker
	validate  *validator.Validate
	uploadDir string
	token     string
	timeout   time.Duration
	version   string
	logger    *slog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithVersion reports version on GET /health.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// New builds a Server from cfg. Routes are registered immediately so the app
// can be exercised with fiber's test helper before Listen.
func New(cfg *config.Config, checker Checker, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		checker:   checker,
		validate:  validator.New(),
		uploadDir: cfg.UploadDir(),
		token:     strings.TrimSpace(cfg.API.Token),
		timeout:   time.Duration(cfg.API.RequestTimeout) * time.Second,
		logger:    logging.NewComponentLogger(logger, "api-server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "vidcheck",
		BodyLimit:             cfg.API.MaxUploadMiB << 20,
		ReadTimeout:           5 * time.Minute,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.requestID)
	s.app.Use(s.requestLogger)
	s.app.Get("/health", s.handleHealth)

	v1 := s.app.Group("/api/v1", s.authenticate)
	v1.Post("/checks/text", s.handleTextCheck)
	v1.Post("/checks/url", s.handleURLCheck)
	v1.Post("/checks/video", s.handleVideoCheck)
	return s
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()
	s.logger.Info("api server listening", logging.String("address", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("api shutdown: %w", err)
		}
		return nil
	}
}

// ListenAndServe binds addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	if status >= fiber.StatusInternalServerError {
		logging.ErrorWithContext(s.log(c), "request failed", "api_request_failed", logging.Error(err))
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error(), RequestID: requestIDFrom(c)})
}
