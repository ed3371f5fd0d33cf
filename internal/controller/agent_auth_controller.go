package controller

import (
	"github.com/gofiber/fiber/v2"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/internal/pkg/serverutils"
	"ai-helpdesk-be/internal/service"
)

type IAgentAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
}

type agentAuthController struct {
	service service.IAgentAuthService
}

func NewAgentAuthController(service service.IAgentAuthService) IAgentAuthController {
	return &agentAuthController{service: service}
}

func (c *agentAuthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Post("/register", serverutils.JwtMiddleware, c.Register) // only an existing agent can add one
	h.Post("/login", c.Login)
}

func (c *agentAuthController) Register(ctx *fiber.Ctx) error {
	var req dto.AgentRegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.service.Register(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Agent registered", nil))
}

func (c *agentAuthController) Login(ctx *fiber.Ctx) error {
	var req dto.AgentLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid credentials"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}
