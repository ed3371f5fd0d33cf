package contract

import (
	"context"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/repository/specification"
)

type SupportMessageRepository interface {
	Create(ctx context.Context, message *entity.SupportMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SupportMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
