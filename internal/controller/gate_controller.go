package controller

import (
	"lexai-be/internal/pkg/serverutils"
	"lexai-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IGateController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
}

type gateController struct {
	service service.IGateService
}

func NewGateController(service service.IGateService) IGateController {
	return &gateController{service: service}
}

func (c *gateController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/gate/v1")
	h.Get("/status", serverutils.OptionalJwtMiddleware, c.Status)
}

func (c *gateController) Status(ctx *fiber.Ctx) error {
	identity := identityFromCtx(ctx)
	status := c.service.Status(ctx.Context(), identity)
	return ctx.JSON(serverutils.SuccessResponse("Success get gate status", status))
}
