package handlers

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resumio/resume-analyzer/internal/middleware"
	"resumio/resume-analyzer/internal/models"
	"resumio/resume-analyzer/internal/services"
)

// SessionHeader lets the client pick the progress session before uploading.
const SessionHeader = "X-Session-Id"

type AnalyzeHandler struct {
	analyzer  services.AnalyzerService
	validator *validator.Validate
}

func NewAnalyzeHandler(analyzer services.AnalyzerService) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:  analyzer,
		validator: NewValidator(),
	}
}

// NewValidator returns a validator with the "minwords" rule registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
		min, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(strings.Fields(fl.Field().String())) >= min
	})
	return v
}

// HandleAnalyze handles POST /api/analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Get(SessionHeader))
	if sessionID == "" {
		sessionID = newSessionID()
	}

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}

	var req models.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}
	req.JobDescription = strings.TrimSpace(req.JobDescription)

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "Failed to read uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "Failed to read uploaded file")
	}

	out, err := h.analyzer.Analyze(c.UserContext(), services.AnalyzeInput{
		UserID:         middleware.UserID(c),
		SessionID:      sessionID,
		FileName:       fileHeader.Filename,
		ContentType:    fileHeader.Header.Get(fiber.HeaderContentType),
		Size:           fileHeader.Size,
		Data:           data,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return writeAnalysisError(c, err)
	}

	return c.JSON(models.AnalyzeResponse{
		AnalysisReport: *out.Report,
		SessionID:      sessionID,
		RecordID:       out.RecordID.String(),
	})
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request payload"
	}

	fe := validationErrors[0]
	if fe.Field() == "JobDescription" {
		switch fe.Tag() {
		case "min":
			return fmt.Sprintf("Job description must be at least %s characters long.", fe.Param())
		case "minwords":
			return fmt.Sprintf("Job description must contain at least %s words.", fe.Param())
		}
	}
	return fmt.Sprintf("Field '%s' failed validation: %s", fe.Field(), fe.Tag())
}

func newSessionID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), suffix)
}
