package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postpilot/autopost/internal/service"
	"github.com/postpilot/autopost/internal/transfer"
)

type PublicationHandler struct {
	s service.PublicationService
}

func NewPublicationHandler(s service.PublicationService) *PublicationHandler {
	return &PublicationHandler{s: s}
}

// PublishNow creates scheduled records and returns immediately; the outcome
// is observed by polling GetPublication or via the notification channel.
func (h *PublicationHandler) PublishNow(c *fiber.Ctx) error {
	projectID := GetProjectID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	created, err := h.s.CreateDirect(c.Context(), projectID, &req)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, service.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(created)
}

func (h *PublicationHandler) GetPublication(c *fiber.Ctx) error {
	recordID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid record id",
		})
	}

	rec, err := h.s.Record(c.Context(), int64(recordID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Publication record doesn't exist",
		})
	}

	return c.Status(fiber.StatusOK).JSON(rec)
}
