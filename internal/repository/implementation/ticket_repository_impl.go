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

type TicketRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TicketMapper
}

func NewTicketRepository(db *gorm.DB) contract.TicketRepository {
	return &TicketRepositoryImpl{
		db:     db,
		mapper: mapper.NewTicketMapper(),
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *entity.Ticket) error {
	m := r.mapper.ToModel(ticket)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*ticket = *r.mapper.ToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, ticket *entity.Ticket) error {
	m := r.mapper.ToModel(ticket)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*ticket = *r.mapper.ToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Ticket, error) {
	var m model.Ticket
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TicketRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Ticket, error) {
	var models []model.Ticket
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Ticket, len(models))
	for i := range models {
		entities[i] = r.mapper.ToEntity(&models[i])
	}
	return entities, nil
}

func (r *TicketRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Ticket{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
