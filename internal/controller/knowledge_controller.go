package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/internal/pkg/serverutils"
	"ai-helpdesk-be/internal/service"
)

type IKnowledgeController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Reindex(ctx *fiber.Ctx) error
}

type knowledgeController struct {
	service service.IKnowledgeService
}

func NewKnowledgeController(service service.IKnowledgeService) IKnowledgeController {
	return &knowledgeController{service: service}
}

func (c *knowledgeController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/knowledge/v1")
	h.Post("/search", c.Search)
	h.Post("/reindex", serverutils.JwtMiddleware, c.Reindex) // agents only
}

func (c *knowledgeController) Search(ctx *fiber.Ctx) error {
	var req dto.KnowledgeSearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Search(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search knowledge", res))
}

func (c *knowledgeController) Reindex(ctx *fiber.Ctx) error {
	requestedBy := "unknown"
	if agentID, ok := ctx.Locals("agent_id").(string); ok {
		requestedBy = agentID
	}

	if err := c.service.RequestReindex(requestedBy); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Reindex requested", dto.ReindexResponse{Requested: true}))
}
