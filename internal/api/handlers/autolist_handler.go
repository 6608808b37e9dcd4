package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postpilot/autopost/internal/service"
	"github.com/postpilot/autopost/internal/transfer"
)

type AutoListHandler struct {
	s service.AutoListService
}

func NewAutoListHandler(s service.AutoListService) *AutoListHandler {
	return &AutoListHandler{s: s}
}

func (h *AutoListHandler) CreateAutoList(c *fiber.Ctx) error {
	projectID := GetProjectID(c)

	var req transfer.AutoListCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	id, err := h.s.Create(c.Context(), projectID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": id,
	})
}

func (h *AutoListHandler) UpdateAutoList(c *fiber.Ctx) error {
	projectID := GetProjectID(c)
	autoListID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid autolist id",
		})
	}

	var req transfer.AutoListCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.Update(c.Context(), projectID, int64(autoListID), &req); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, service.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AutoListHandler) GetAutoList(c *fiber.Ctx) error {
	autoListID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid autolist id",
		})
	}

	autoList, err := h.s.Get(c.Context(), int64(autoListID))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Autolist doesn't exist",
		})
	}

	return c.Status(fiber.StatusOK).JSON(autoList)
}

func (h *AutoListHandler) ListAutoLists(c *fiber.Ctx) error {
	projectID := GetProjectID(c)

	lists, err := h.s.List(c.Context(), projectID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list autolists",
		})
	}

	return c.Status(fiber.StatusOK).JSON(lists)
}

func (h *AutoListHandler) RemoveAutoList(c *fiber.Ctx) error {
	projectID := GetProjectID(c)
	autoListID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid autolist id",
		})
	}

	if err := h.s.Remove(c.Context(), projectID, int64(autoListID)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Autolist doesn't exist",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AutoListHandler) CreateEntry(c *fiber.Ctx) error {
	var req transfer.AutoListEntryCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	id, err := h.s.CreateEntry(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": id,
	})
}

func (h *AutoListHandler) UpdateEntry(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry id",
		})
	}

	var req transfer.AutoListEntryCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.UpdateEntry(c.Context(), int64(entryID), &req); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, service.ErrNotFound) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *AutoListHandler) RemoveEntry(c *fiber.Ctx) error {
	entryID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid entry id",
		})
	}

	if err := h.s.RemoveEntry(c.Context(), int64(entryID)); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Entry doesn't exist",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
