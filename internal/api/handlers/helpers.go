package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func GetProjectID(c *fiber.Ctx) int64 {
	projectID, _ := strconv.Atoi(c.Locals("project_id").(string))
	return int64(projectID)
}
