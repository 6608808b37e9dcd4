package handlers

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/postpilot/autopost/configs"
	"github.com/postpilot/autopost/internal/service"
)

type ConnectionHandler struct {
	s   service.ConnectService
	cfg config.Config
}

func NewConnectionHandler(s service.ConnectService, cfg config.Config) *ConnectionHandler {
	return &ConnectionHandler{s: s, cfg: cfg}
}

func (h *ConnectionHandler) GetAuthURL(c *fiber.Ctx) error {
	projectID, err := c.ParamsInt("project_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid project id",
		})
	}

	authURL, err := h.s.GetAuthURL(c.Context(), int64(projectID), c.Query("provider"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Redirect(authURL)
}

func (h *ConnectionHandler) CallbackHandler(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if err := h.s.Callback(c.Context(), state, code); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to connect account",
		})
	}

	redirectURL := fmt.Sprintf("%s/dashboard/accounts", h.cfg.FrontendURL)
	return c.Redirect(redirectURL, fiber.StatusTemporaryRedirect)
}
