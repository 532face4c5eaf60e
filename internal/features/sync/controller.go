package sync

import (
	"github.com/gofiber/fiber/v2"
)

type SyncController struct {
	Service SyncService
}

func NewSyncController(service SyncService) *SyncController {
	return &SyncController{
		Service: service,
	}
}

func (ctrl *SyncController) GetConfig(c *fiber.Ctx) error {
	cfg, err := ctrl.Service.GetConfig(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(cfg)
}

func (ctrl *SyncController) UpdateConfig(c *fiber.Ctx) error {
	var updates map[string]interface{}
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := ctrl.Service.UpdateConfig(c.Context(), updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sync config updated successfully",
	})
}

func (ctrl *SyncController) RunNow(c *fiber.Ctx) error {
	if err := ctrl.Service.RunNow(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Sync run completed",
	})
}

func (ctrl *SyncController) ListQueue(c *fiber.Ctx) error {
	limit := int64(c.QueryInt("limit", 100))

	items, err := ctrl.Service.ListQueueItems(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": items,
	})
}

func (ctrl *SyncController) RetryItem(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := ctrl.Service.RetryItem(c.Context(), id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Queue item queued for retry",
	})
}

func (ctrl *SyncController) TestConnection(c *fiber.Ctx) error {
	ok, err := ctrl.Service.TestConnection(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"connected": ok,
	})
}
