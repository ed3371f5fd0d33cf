package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/pkg/serverutils"
	"ai-helpdesk-be/internal/service"
)

type ITicketController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
}

type ticketController struct {
	service service.ITicketService
}

func NewTicketController(service service.ITicketService) ITicketController {
	return &ticketController{service: service}
}

func (c *ticketController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ticket/v1")
	h.Use(serverutils.JwtMiddleware) // agents only
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Patch(":id/status", c.UpdateStatus)
}

func (c *ticketController) List(ctx *fiber.Ctx) error {
	status := ctx.Query("status")
	team := ctx.Query("team")

	tickets, err := c.service.List(ctx.Context(), status, team)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get tickets", ticketsToDTO(tickets)))
}

func (c *ticketController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid ticket id"))
	}

	ticket, err := c.service.Get(ctx.Context(), id)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if ticket == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Ticket not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get ticket", ticketToDTO(ticket)))
}

func (c *ticketController) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid ticket id"))
	}

	var req dto.UpdateTicketStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	ticket, err := c.service.UpdateStatus(ctx.Context(), id, req.Status)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Ticket status updated", ticketToDTO(ticket)))
}

func ticketToDTO(t *entity.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		Id:        t.Id,
		SessionId: t.SessionId,
		Category:  t.Category,
		Priority:  t.Priority,
		Team:      t.Team,
		Reason:    t.Reason,
		Status:    t.Status,
		Summary:   t.Summary,
		Metadata:  t.Metadata,
		CreatedAt: t.CreatedAt,
	}
}

func ticketsToDTO(tickets []*entity.Ticket) []dto.TicketResponse {
	dtos := make([]dto.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		dtos = append(dtos, ticketToDTO(t))
	}
	return dtos
}
