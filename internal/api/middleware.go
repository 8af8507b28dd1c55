package api

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vidcheck/internal/logging"
	"vidcheck/internal/services"
)

const (
	headerRequestID = "X-Request-ID"
	localRequestID  = "requestID"
	maxRequestIDLen = 128
)

// requestID stamps every request with an ID, honouring a sane caller value.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(headerRequestID))
	if id == "" || len(id) > maxRequestIDLen {
		id = uuid.NewString()
	}
	c.Locals(localRequestID, id)
	c.Set(headerRequestID, id)
	c.SetUserContext(services.WithRequestID(c.UserContext(), id))
	return c.Next()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	s.log(c).Info("http request",
		logging.String("method", c.Method()),
		logging.String("path", c.Path()),
		logging.Int("status", status),
		logging.Duration("elapsed", time.Since(start)),
	)
	return err
}

// authenticate validates bearer tokens. With no token configured every
// request passes through.
func (s *Server) authenticate(c *fiber.Ctx) error {
	if s.token == "" {
		return c.Next()
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "unauthorized", RequestID: requestIDFrom(c)})
	}
	return c.Next()
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

func (s *Server) log(c *fiber.Ctx) *slog.Logger {
	return logging.WithContext(c.UserContext(), s.logger)
}
