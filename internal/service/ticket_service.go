package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/pkg/mailer"
	"ai-helpdesk-be/internal/repository/specification"
	"ai-helpdesk-be/internal/repository/unitofwork"
	"ai-helpdesk-be/internal/websocket"
	"ai-helpdesk-be/pkg/events"
	pkgNats "ai-helpdesk-be/pkg/nats"
	"ai-helpdesk-be/pkg/scenario"
	"ai-helpdesk-be/pkg/scenario/engine"
)

type ITicketService interface {
	CreateForEscalation(ctx context.Context, session *entity.SupportSession, sc *scenario.Scenario, state *engine.State) (*entity.Ticket, error)
	List(ctx context.Context, status, team string) ([]*entity.Ticket, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Ticket, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Ticket, error)
}

type ticketService struct {
	uowFactory      unitofwork.RepositoryFactory
	eventPublisher  *pkgNats.Publisher
	emailService    mailer.IEmailService
	escalationInbox string
	hub             *websocket.Hub
}

func NewTicketService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pkgNats.Publisher,
	emailService mailer.IEmailService,
	escalationInbox string,
	hub *websocket.Hub,
) ITicketService {
	return &ticketService{
		uowFactory:      uowFactory,
		eventPublisher:  eventPublisher,
		emailService:    emailService,
		escalationInbox: escalationInbox,
		hub:             hub,
	}
}

// CreateForEscalation persists the ticket and fans the escalation out:
// a NATS event for downstream systems, an email to the escalation inbox,
// and a websocket alert for agents watching the dashboard. Side channels
// are best effort; only the database write can fail the call.
func (s *ticketService) CreateForEscalation(ctx context.Context, session *entity.SupportSession, sc *scenario.Scenario, state *engine.State) (*entity.Ticket, error) {
	meta := sc.Escalation.Ticket
	category := meta.Category
	if category == "" {
		category = session.ProblemType
	}
	priority := meta.Priority
	if priority == "" {
		priority = "normal"
	}

	summary := fmt.Sprintf("Scenario %q escalated (%s) after %d turns. Completed steps: %v, skipped: %v.",
		sc.Title, state.EscalationReason, state.TurnCount, state.CompletedSteps, state.SkippedSteps)

	ticket := &entity.Ticket{
		SessionId: session.Id,
		Category:  category,
		Priority:  priority,
		Team:      meta.Team,
		Reason:    string(state.EscalationReason),
		Status:    entity.TicketStatusOpen,
		Summary:   summary,
		Metadata: map[string]interface{}{
			"scenario_id":     sc.ID,
			"completed_steps": state.CompletedSteps,
			"skipped_steps":   state.SkippedSteps,
			"turn_count":      state.TurnCount,
			"context_fields":  session.ContextFields,
			"description":     session.Description,
		},
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.TicketRepository().Create(ctx, ticket); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		event := events.NewTicketEscalated(
			ticket.Id.String(), session.Id.String(), sc.ID,
			ticket.Reason, ticket.Priority, ticket.Team,
		)
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish escalation event for ticket %s: %v", ticket.Id, err)
		}
	}

	if s.emailService != nil && s.escalationInbox != "" {
		if err := s.emailService.SendEscalationAlert(s.escalationInbox, ticket.Id.String(), ticket.Category, ticket.Priority, summary); err != nil {
			log.Printf("[WARN] Failed to email escalation alert for ticket %s: %v", ticket.Id, err)
		}
	}

	if s.hub != nil {
		s.hub.Broadcast(websocket.Alert{
			Type:      "ticket_escalated",
			TicketId:  ticket.Id.String(),
			SessionId: session.Id.String(),
			Category:  ticket.Category,
			Priority:  ticket.Priority,
			Team:      ticket.Team,
			Message:   summary,
		})
	}

	return ticket, nil
}

func (s *ticketService) List(ctx context.Context, status, team string) ([]*entity.Ticket, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if status != "" {
		specs = append(specs, specification.ByStatus{Status: status})
	}
	if team != "" {
		specs = append(specs, specification.ByTeam{Team: team})
	}

	return uow.TicketRepository().FindAll(ctx, specs...)
}

func (s *ticketService) Get(ctx context.Context, id uuid.UUID) (*entity.Ticket, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.TicketRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *ticketService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*entity.Ticket, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	ticket, err := uow.TicketRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %s not found", id)
	}

	ticket.Status = status
	if err := uow.TicketRepository().Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}
