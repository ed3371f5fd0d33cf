package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ai-helpdesk-be/internal/dto"
	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/unitofwork"
)

type IAgentAuthService interface {
	Register(ctx context.Context, req *dto.AgentRegisterRequest) error
	Login(ctx context.Context, req *dto.AgentLoginRequest) (*dto.AgentLoginResponse, error)
}

type agentAuthService struct {
	uowFactory    unitofwork.RepositoryFactory
	tokenTTLHours int
}

func NewAgentAuthService(uowFactory unitofwork.RepositoryFactory, tokenTTLHours int) IAgentAuthService {
	if tokenTTLHours <= 0 {
		tokenTTLHours = 24
	}
	return &agentAuthService{
		uowFactory:    uowFactory,
		tokenTTLHours: tokenTTLHours,
	}
}

func (s *agentAuthService) Register(ctx context.Context, req *dto.AgentRegisterRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.AgentRepository().FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("agent with email %s already exists", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	agent := &entity.Agent{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Team:         req.Team,
	}
	return uow.AgentRepository().Create(ctx, agent)
}

func (s *agentAuthService) Login(ctx context.Context, req *dto.AgentLoginRequest) (*dto.AgentLoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	agent, err := uow.AgentRepository().FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	claims := jwt.MapClaims{
		"agent_id": agent.Id.String(),
		"team":     agent.Team,
		"exp":      time.Now().Add(time.Duration(s.tokenTTLHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return nil, err
	}

	return &dto.AgentLoginResponse{Token: signed}, nil
}
