package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScreenHandler struct {
	screening services.ScreeningService
}

func NewScreenHandler(screening services.ScreeningService) *ScreenHandler {
	return &ScreenHandler{screening: screening}
}

// HandleScreen handles POST /screen: synchronous scoring with no
// persistence.
func (h *ScreenHandler) HandleScreen(c *fiber.Ctx) error {
	var req models.ScreenRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.ResumeText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_text is required",
		})
	}

	resp, err := h.screening.Screen(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, ml.ErrDataQuality) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to screen resume",
		})
	}

	return c.JSON(resp)
}
