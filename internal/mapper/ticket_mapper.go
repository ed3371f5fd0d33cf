package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/model"
)

type TicketMapper struct{}

func NewTicketMapper() *TicketMapper {
	return &TicketMapper{}
}

func (m *TicketMapper) ToEntity(t *model.Ticket) *entity.Ticket {
	if t == nil {
		return nil
	}

	metadata := map[string]interface{}{}
	if len(t.Metadata) > 0 {
		_ = json.Unmarshal(t.Metadata, &metadata)
	}

	return &entity.Ticket{
		Id:        t.Id,
		SessionId: t.SessionId,
		Category:  t.Category,
		Priority:  t.Priority,
		Team:      t.Team,
		Reason:    t.Reason,
		Status:    t.Status,
		Summary:   t.Summary,
		Metadata:  metadata,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAtPtr(t.UpdatedAt),
	}
}

func (m *TicketMapper) ToModel(t *entity.Ticket) *model.Ticket {
	if t == nil {
		return nil
	}

	metadata, _ := json.Marshal(t.Metadata)

	return &model.Ticket{
		Id:        t.Id,
		SessionId: t.SessionId,
		Category:  t.Category,
		Priority:  t.Priority,
		Team:      t.Team,
		Reason:    t.Reason,
		Status:    t.Status,
		Summary:   t.Summary,
		Metadata:  datatypes.JSON(metadata),
	}
}
