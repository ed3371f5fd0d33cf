package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/mapper"
	"ai-helpdesk-be/internal/model"
	"ai-helpdesk-be/internal/repository/contract"
	"ai-helpdesk-be/internal/repository/specification"
)

type CustomerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SupportMapper
}

func NewCustomerRepository(db *gorm.DB) contract.CustomerRepository {
	return &CustomerRepositoryImpl{
		db:     db,
		mapper: mapper.NewSupportMapper(),
	}
}

func (r *CustomerRepositoryImpl) Create(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.CustomerToModel(customer)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.CustomerToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) Update(ctx context.Context, customer *entity.Customer) error {
	m := r.mapper.CustomerToModel(customer)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*customer = *r.mapper.CustomerToEntity(m)
	return nil
}

func (r *CustomerRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error) {
	var m model.Customer
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.CustomerToEntity(&m), nil
}

func (r *CustomerRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	return r.FindOne(ctx, specification.ByEmail{Email: email})
}

func (r *CustomerRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Customer{}, id).Error
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
