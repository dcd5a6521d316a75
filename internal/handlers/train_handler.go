package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/ml"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

type TrainHandler struct {
	trainer services.TrainerService
}

func NewTrainHandler(trainer services.TrainerService) *TrainHandler {
	return &TrainHandler{trainer: trainer}
}

// HandleTrain handles POST /train. Only one run may be in flight; a
// second request gets 409.
func (h *TrainHandler) HandleTrain(c *fiber.Ctx) error {
	var req models.TrainRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if req.DatasetPath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "dataset_path is required",
		})
	}

	runID, err := h.trainer.StartRun(&req)
	if err != nil {
		if errors.Is(err, services.ErrTrainingBusy) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		if errors.Is(err, ml.ErrConfig) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to start training run",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(models.TrainResponse{
		ID:     runID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetRun handles GET /train/:id.
func (h *TrainHandler) HandleGetRun(c *fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid training run ID format",
		})
	}

	run, err := h.trainer.GetRun(runID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Training run not found",
		})
	}

	response := fiber.Map{
		"id":     run.ID.String(),
		"status": string(run.Status),
		"stage":  run.Stage,
	}
	if run.Report != nil && *run.Report != "" {
		var report json.RawMessage
		if err := json.Unmarshal([]byte(*run.Report), &report); err == nil {
			response["report"] = report
		}
	}
	if run.ErrorMessage != nil {
		response["error_message"] = *run.ErrorMessage
	}

	return c.JSON(response)
}
