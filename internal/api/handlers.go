package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"vidcheck/internal/fileutil"
	"vidcheck/internal/logging"
	"vidcheck/internal/pipeline"
	"vidcheck/internal/services"
	"vidcheck/internal/textutil"
)

const uploadField = "file"

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok", Version: s.version})
}

func (s *Server) handleTextCheck(c *fiber.Ctx) error {
	var req TextCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, fmt.Sprintf("invalid request body: %v", err), nil)
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validate.Struct(req); err != nil {
		return s.badRequest(c, "validation failed", validationDetails(err))
	}
	return s.runCheck(c, pipeline.Input{Kind: pipeline.KindText, Text: req.Text})
}

func (s *Server) handleURLCheck(c *fiber.Ctx) error {
	var req URLCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return s.badRequest(c, fmt.Sprintf("invalid request body: %v", err), nil)
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := s.validate.Struct(req); err != nil {
		return s.badRequest(c, "validation failed", validationDetails(err))
	}
	return s.runCheck(c, pipeline.Input{Kind: pipeline.KindURL, URL: req.URL})
}

// handleVideoCheck stages the upload under the work directory, runs the
// check against it and removes it afterwards.
func (s *Server) handleVideoCheck(c *fiber.Ctx) error {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return s.badRequest(c, fmt.Sprintf("multipart field %q is required", uploadField), nil)
	}
	src, err := header.Open()
	if err != nil {
		return s.badRequest(c, fmt.Sprintf("read upload: %v", err), nil)
	}
	defer src.Close()

	name := textutil.SanitizeFileName(header.Filename)
	if name == "" {
		name = "upload.mp4"
	}
	dst := filepath.Join(s.uploadDir, uuid.NewString()+"-"+name)
	digest, err := fileutil.WriteAtomic(dst, src, 0o644)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, fmt.Sprintf("stage upload: %v", err))
	}
	defer func() {
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(s.log(c), "staged upload not removed", "upload_cleanup_failed",
				logging.String("path", dst),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file remains in the upload directory"),
			)
		}
	}()
	s.log(c).Info("upload staged",
		logging.String("file", name),
		logging.Int("bytes", int(digest.Size)),
		logging.String("sha256", digest.SHA256),
	)
	return s.runCheck(c, pipeline.Input{Kind: pipeline.KindVideo, VideoPath: dst})
}

func (s *Server) runCheck(c *fiber.Ctx, in pipeline.Input) error {
	ctx := c.UserContext()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	report, err := s.checker.Run(ctx, in)
	if err != nil {
		return s.checkFailed(c, report, err)
	}
	dto := FromReport(report)
	dto.RequestID = requestIDFrom(c)
	return c.Status(fiber.StatusOK).JSON(dto)
}

func (s *Server) checkFailed(c *fiber.Ctx, report *pipeline.Report, err error) error {
	status := statusFor(err)
	resp := ErrorResponse{Error: err.Error(), RequestID: requestIDFrom(c)}
	if report != nil {
		dto := FromReport(report)
		dto.RequestID = resp.RequestID
		resp.Report = &dto
	}
	if status >= fiber.StatusInternalServerError {
		logging.ErrorWithContext(s.log(c), "check failed", "api_check_failed",
			logging.String("failure", string(services.FailureState(err))),
			logging.Error(err),
		)
	}
	return c.Status(status).JSON(resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSourceUnavailable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrOracle):
		return fiber.StatusBadGateway
	case errors.Is(err, services.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) badRequest(c *fiber.Ctx, message string, details []string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: message, Details: details, RequestID: requestIDFrom(c)})
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		detail := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			detail = fmt.Sprintf("%s (value: %s)", detail, fe.Param())
		}
		details = append(details, detail)
	}
	return details
}
