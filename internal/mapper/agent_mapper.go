package mapper

import (
	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/model"
)

type AgentMapper struct{}

func NewAgentMapper() *AgentMapper {
	return &AgentMapper{}
}

func (m *AgentMapper) ToEntity(a *model.Agent) *entity.Agent {
	if a == nil {
		return nil
	}

	return &entity.Agent{
		Id:           a.Id,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Team:         a.Team,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    updatedAtPtr(a.UpdatedAt),
	}
}

func (m *AgentMapper) ToModel(a *entity.Agent) *model.Agent {
	if a == nil {
		return nil
	}

	return &model.Agent{
		Id:           a.Id,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Team:         a.Team,
	}
}
