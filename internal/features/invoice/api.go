package invoice

import (
	"laundry-pos/internal/common/api"
	"laundry-pos/internal/config"
	"laundry-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InvoiceApi struct {
	controller *InvoiceController
	config     *config.Config
}

func NewInvoiceApi(controller *InvoiceController, config *config.Config) api.Route {
	return &InvoiceApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all invoice routes
func (h *InvoiceApi) Setup(app *fiber.App) {
	group := app.Group("/api/invoices", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Post("/", h.controller.CreateInvoice)
	group.Get("/", h.controller.ListInvoices)
	group.Get("/export", h.controller.ExportInvoices)
	group.Get("/:id", h.controller.GetInvoice)
	group.Put("/:id", h.controller.UpdateInvoice)
	group.Delete("/:id", h.controller.DeleteInvoice)
}
