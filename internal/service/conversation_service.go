package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/memory"
	"ai-helpdesk-be/internal/repository/specification"
	"ai-helpdesk-be/internal/repository/unitofwork"
	"ai-helpdesk-be/pkg/classify"
	"ai-helpdesk-be/pkg/events"
	"ai-helpdesk-be/pkg/llm"
	pkgNats "ai-helpdesk-be/pkg/nats"
	"ai-helpdesk-be/pkg/scenario"
	"ai-helpdesk-be/pkg/scenario/engine"
)

const (
	replyResolved  = "Glad to hear it is working again. The session is closed; contact us any time if the problem returns."
	replyEscalated = "I could not solve this remotely, so I have created a ticket for our technicians. Ticket number: %s. You will be contacted shortly."

	// How many prior messages the classifier sees.
	historyWindow = 10
)

type IConversationService interface {
	StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error)
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	GetHistory(ctx context.Context, sessionID uuid.UUID) (*dto.SessionHistoryResponse, error)
}

type conversationService struct {
	uowFactory     unitofwork.RepositoryFactory
	scenarios      map[string]*scenario.Scenario
	selector       *scenario.Selector
	classifier     classify.Classifier
	engineStates   *memory.EngineStateRepository
	ticketService  ITicketService
	eventPublisher *pkgNats.Publisher
	maxTurns       int
	maxFailures    int
	logger         *log.Logger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	scenarios map[string]*scenario.Scenario,
	selector *scenario.Selector,
	classifier classify.Classifier,
	engineStates *memory.EngineStateRepository,
	ticketService ITicketService,
	eventPublisher *pkgNats.Publisher,
	maxTurns int,
	maxFailures int,
	logger *log.Logger,
) IConversationService {
	return &conversationService{
		uowFactory:     uowFactory,
		scenarios:      scenarios,
		selector:       selector,
		classifier:     classifier,
		engineStates:   engineStates,
		ticketService:  ticketService,
		eventPublisher: eventPublisher,
		maxTurns:       maxTurns,
		maxFailures:    maxFailures,
		logger:         logger,
	}
}

func (s *conversationService) StartSession(ctx context.Context, req *dto.StartSessionRequest) (*dto.StartSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	customer, err := s.resolveCustomer(ctx, uow, req)
	if err != nil {
		return nil, err
	}

	scenarioID := s.selector.Select(req.ProblemType, req.ContextFields, req.Description)
	sc, ok := s.scenarios[scenarioID]
	if !ok {
		return nil, fmt.Errorf("selected scenario %q is not loaded", scenarioID)
	}

	session := &entity.SupportSession{
		CustomerId:    customer.Id,
		ProblemType:   req.ProblemType,
		Description:   req.Description,
		ScenarioId:    scenarioID,
		Status:        entity.SessionStatusActive,
		ContextFields: req.ContextFields,
	}
	if err := uow.SupportSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	eng := s.newEngine(sc, req.ContextFields)
	turn, err := eng.Start()
	if err != nil {
		return nil, err
	}

	resp := &dto.StartSessionResponse{
		SessionId:  session.Id,
		ScenarioId: scenarioID,
	}

	if req.Description != "" {
		s.recordMessage(ctx, uow, session.Id, entity.RoleCustomer, req.Description, "")
	}

	switch turn.Phase {
	case engine.PhaseEscalated:
		ticket, err := s.handleEscalation(ctx, session, sc, eng.State(), uow)
		if err != nil {
			return nil, err
		}
		resp.Status = entity.SessionStatusEscalated
		resp.Reply = fmt.Sprintf(replyEscalated, ticket.Id)
		resp.TicketId = ticket.Id.String()
	default:
		resp.Status = entity.SessionStatusActive
		resp.Reply = turn.Instruction
		resp.WaitTime = turn.WaitTime
		if err := s.persistState(ctx, uow, session, eng.State()); err != nil {
			return nil, err
		}
	}

	s.recordMessage(ctx, uow, session.Id, entity.RoleAssistant, resp.Reply, "")
	return resp, nil
}

func (s *conversationService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SupportSessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s not found", req.SessionId)
	}
	if session.Status != entity.SessionStatusActive {
		return nil, fmt.Errorf("session %s is %s", session.Id, session.Status)
	}

	sc, ok := s.scenarios[session.ScenarioId]
	if !ok {
		return nil, fmt.Errorf("scenario %q for session %s is not loaded", session.ScenarioId, session.Id)
	}

	state, err := s.loadState(session)
	if err != nil {
		return nil, err
	}
	eng, err := s.resumeEngine(sc, session.ContextFields, state)
	if err != nil {
		return nil, err
	}

	instruction := ""
	if step := sc.StepByID(state.CurrentStep); step != nil {
		instruction = step.Instruction
	}
	history, err := s.classificationHistory(ctx, uow, session.Id)
	if err != nil {
		return nil, err
	}

	cls, err := s.classifier.Classify(ctx, instruction, history, req.Message)
	if err != nil {
		// The classifier degrades to unclear internally; an error here
		// is a programming fault, not a model hiccup.
		return nil, err
	}

	s.recordMessage(ctx, uow, session.Id, entity.RoleCustomer, req.Message, string(cls.Outcome))

	turn, err := eng.Advance(cls)
	if err != nil {
		return nil, err
	}

	resp := &dto.SendMessageResponse{
		SessionId: session.Id,
		Outcome:   string(cls.Outcome),
	}

	switch turn.Phase {
	case engine.PhaseResolved:
		session.Status = entity.SessionStatusResolved
		session.EngineState = mustMarshalState(eng.State())
		if err := uow.SupportSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
		s.engineStates.Delete(session.Id.String())
		s.publishResolved(ctx, session, eng.State())
		resp.Status = entity.SessionStatusResolved
		resp.Reply = replyResolved

	case engine.PhaseEscalated:
		ticket, err := s.handleEscalation(ctx, session, sc, eng.State(), uow)
		if err != nil {
			return nil, err
		}
		resp.Status = entity.SessionStatusEscalated
		resp.Reply = fmt.Sprintf(replyEscalated, ticket.Id)
		resp.TicketId = ticket.Id.String()

	default:
		if err := s.persistState(ctx, uow, session, eng.State()); err != nil {
			return nil, err
		}
		resp.Status = entity.SessionStatusActive
		resp.Reply = turn.Instruction
		resp.WaitTime = turn.WaitTime
	}

	s.recordMessage(ctx, uow, session.Id, entity.RoleAssistant, resp.Reply, "")
	return resp, nil
}

func (s *conversationService) GetHistory(ctx context.Context, sessionID uuid.UUID) (*dto.SessionHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SupportSessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}

	messages, err := uow.SupportMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.HistoryMessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, dto.HistoryMessageDTO{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			Outcome:   m.Outcome,
			CreatedAt: m.CreatedAt,
		})
	}

	return &dto.SessionHistoryResponse{
		SessionId: session.Id,
		Status:    session.Status,
		Messages:  dtos,
	}, nil
}

func (s *conversationService) resolveCustomer(ctx context.Context, uow unitofwork.UnitOfWork, req *dto.StartSessionRequest) (*entity.Customer, error) {
	if req.CustomerEmail != "" {
		existing, err := uow.CustomerRepository().FindByEmail(ctx, req.CustomerEmail)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	customer := &entity.Customer{
		Name:  req.CustomerName,
		Email: req.CustomerEmail,
		Phone: req.CustomerPhone,
	}
	if err := uow.CustomerRepository().Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *conversationService) engineOptions() []engine.Option {
	opts := []engine.Option{}
	if s.maxTurns > 0 {
		opts = append(opts, engine.WithMaxTurns(s.maxTurns))
	}
	if s.maxFailures > 0 {
		opts = append(opts, engine.WithMaxFailures(s.maxFailures))
	}
	return opts
}

func (s *conversationService) newEngine(sc *scenario.Scenario, ctxFields map[string]string) *engine.Engine {
	return engine.New(sc, ctxFields, s.logger, s.engineOptions()...)
}

func (s *conversationService) resumeEngine(sc *scenario.Scenario, ctxFields map[string]string, state *engine.State) (*engine.Engine, error) {
	return engine.Resume(sc, ctxFields, state, s.logger, s.engineOptions()...)
}

func (s *conversationService) loadState(session *entity.SupportSession) (*engine.State, error) {
	if state, ok := s.engineStates.Get(session.Id.String()); ok {
		return state, nil
	}
	if len(session.EngineState) == 0 {
		return nil, fmt.Errorf("session %s has no engine state", session.Id)
	}
	var state engine.State
	if err := json.Unmarshal(session.EngineState, &state); err != nil {
		return nil, fmt.Errorf("corrupt engine state for session %s: %w", session.Id, err)
	}
	return &state, nil
}

func (s *conversationService) persistState(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.SupportSession, state *engine.State) error {
	session.EngineState = mustMarshalState(state)
	if err := uow.SupportSessionRepository().Update(ctx, session); err != nil {
		return err
	}
	s.engineStates.Save(session.Id.String(), state)
	return nil
}

func (s *conversationService) handleEscalation(ctx context.Context, session *entity.SupportSession, sc *scenario.Scenario, state *engine.State, uow unitofwork.UnitOfWork) (*entity.Ticket, error) {
	ticket, err := s.ticketService.CreateForEscalation(ctx, session, sc, state)
	if err != nil {
		return nil, err
	}

	session.Status = entity.SessionStatusEscalated
	session.EngineState = mustMarshalState(state)
	if err := uow.SupportSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	s.engineStates.Delete(session.Id.String())
	return ticket, nil
}

func (s *conversationService) classificationHistory(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID) ([]llm.Message, error) {
	messages, err := uow.SupportMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: historyWindow},
	)
	if err != nil {
		return nil, err
	}

	// Reverse back into chronological order.
	history := make([]llm.Message, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		role := "user"
		if messages[i].Role == entity.RoleAssistant {
			role = "assistant"
		}
		history = append(history, llm.Message{Role: role, Content: messages[i].Content})
	}
	return history, nil
}

func (s *conversationService) recordMessage(ctx context.Context, uow unitofwork.UnitOfWork, sessionID uuid.UUID, role, content, outcome string) {
	msg := &entity.SupportMessage{
		SessionId: sessionID,
		Role:      role,
		Content:   content,
		Outcome:   outcome,
	}
	if err := uow.SupportMessageRepository().Create(ctx, msg); err != nil {
		s.logger.Printf("[WARN] Failed to record %s message for session %s: %v", role, sessionID, err)
	}
}

func (s *conversationService) publishResolved(ctx context.Context, session *entity.SupportSession, state *engine.State) {
	if s.eventPublisher == nil {
		return
	}
	event := events.NewSessionResolved(session.Id.String(), session.ScenarioId, len(state.CompletedSteps))
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Printf("[WARN] Failed to publish resolved event for session %s: %v", session.Id, err)
	}
}

func mustMarshalState(state *engine.State) []byte {
	data, err := json.Marshal(state)
	if err != nil {
		// State is plain structs; this cannot fail at runtime.
		panic(err)
	}
	return data
}
