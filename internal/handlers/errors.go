package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"resumio/resume-analyzer/internal/models"
	"resumio/resume-analyzer/internal/services"
)

// statusFor maps a pipeline error kind onto an HTTP status.
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindInputRejected:
		return fiber.StatusBadRequest
	case services.KindUpstreamUnavailable, services.KindResponseMalformed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func writeAnalysisError(c *fiber.Ctx, err error) error {
	ae, ok := services.AsAnalysisError(err)
	if !ok {
		log.Printf("❌ Unexpected analysis error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: services.UserMessage(err),
		})
	}

	if ae.Kind != services.KindInputRejected {
		log.Printf("❌ Analysis failed: %v", err)
	}
	return c.Status(statusFor(ae.Kind)).JSON(models.ErrorResponse{
		Error: ae.Message,
		Code:  string(ae.Kind),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: message,
		Code:  string(services.KindInputRejected),
	})
}
