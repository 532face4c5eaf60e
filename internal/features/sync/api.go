package sync

import (
	"laundry-pos/internal/common/api"
	"laundry-pos/internal/config"
	"laundry-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SyncApi struct {
	controller *SyncController
	config     *config.Config
}

func NewSyncApi(controller *SyncController, config *config.Config) api.Route {
	return &SyncApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all sync routes
func (h *SyncApi) Setup(app *fiber.App) {
	syncGroup := app.Group("/api/sync", middleware.AuthMiddleware(h.config.SkipAuth))

	syncGroup.Get("/config", h.controller.GetConfig)
	syncGroup.Put("/config", h.controller.UpdateConfig)
	syncGroup.Post("/run", h.controller.RunNow)
	syncGroup.Get("/queue", h.controller.ListQueue)
	syncGroup.Post("/queue/:id/retry", h.controller.RetryItem)
	syncGroup.Post("/test", h.controller.TestConnection)
}
