package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/mapper"
	"ai-helpdesk-be/internal/model"
	"ai-helpdesk-be/internal/repository/contract"
	"ai-helpdesk-be/internal/repository/specification"
)

type AgentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AgentMapper
}

func NewAgentRepository(db *gorm.DB) contract.AgentRepository {
	return &AgentRepositoryImpl{
		db:     db,
		mapper: mapper.NewAgentMapper(),
	}
}

func (r *AgentRepositoryImpl) Create(ctx context.Context, agent *entity.Agent) error {
	m := r.mapper.ToModel(agent)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*agent = *r.mapper.ToEntity(m)
	return nil
}

func (r *AgentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Agent, error) {
	var m model.Agent
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AgentRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.Agent, error) {
	return r.FindOne(ctx, specification.ByEmail{Email: email})
}
