package controller

import (
	"lexai-be/internal/dto"
	"lexai-be/internal/pkg/serverutils"
	"lexai-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Extract(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	UpdateDocument(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")

	// Ask and extract serve anonymous callers too, so identity is optional.
	h.Post("/ask", serverutils.OptionalJwtMiddleware, c.Ask)
	h.Post("/extract", serverutils.OptionalJwtMiddleware, c.Extract)

	protected := h.Group("", serverutils.JwtMiddleware)
	protected.Post("", c.Create)
	protected.Get("", c.GetAll)
	protected.Get(":id/history", c.GetHistory)
	protected.Patch(":id/document", c.UpdateDocument)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskQuestionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	identity := identityFromCtx(ctx)

	res, err := c.service.AskQuestion(ctx.Context(), identity, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Question processed", res))
}

func (c *chatController) Extract(ctx *fiber.Ctx) error {
	var req dto.ExtractTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ExtractText(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Extraction processed", res))
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	userId := mustUserId(ctx)

	var req dto.CreateChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chat", res))
}

func (c *chatController) GetAll(ctx *fiber.Ctx) error {
	userId := mustUserId(ctx)

	res, err := c.service.GetAllChats(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chats", res))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	userId := mustUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid chat id"))
	}

	res, err := c.service.GetChatHistory(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Chat not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) UpdateDocument(ctx *fiber.Ctx) error {
	userId := mustUserId(ctx)
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid chat id"))
	}

	var req dto.UpdateDocumentTextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateDocumentText(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Chat not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update document", res))
}
