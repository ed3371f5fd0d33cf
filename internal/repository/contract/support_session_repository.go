package contract

import (
	"context"

	"github.com/google/uuid"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/specification"
)

type SupportSessionRepository interface {
	Create(ctx context.Context, session *entity.SupportSession) error
	Update(ctx context.Context, session *entity.SupportSession) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SupportSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
