package contract

import (
	"context"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/specification"
)

type AgentRepository interface {
	Create(ctx context.Context, agent *entity.Agent) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Agent, error)
	FindByEmail(ctx context.Context, email string) (*entity.Agent, error)
}
