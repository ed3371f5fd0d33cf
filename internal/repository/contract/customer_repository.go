package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/specification"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	Update(ctx context.Context, customer *entity.Customer) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Customer, error)
	FindByEmail(ctx context.Context, email string) (*entity.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
