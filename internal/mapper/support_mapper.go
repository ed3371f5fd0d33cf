package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"ai-helpdesk-be/internal/entity"
	"ai-helpdesk-be/internal/model"
)

type SupportMapper struct{}

func NewSupportMapper() *SupportMapper {
	return &SupportMapper{}
}

func (m *SupportMapper) CustomerToEntity(c *model.Customer) *entity.Customer {
	if c == nil {
		return nil
	}

	return &entity.Customer{
		Id:        c.Id,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAtPtr(c.UpdatedAt),
	}
}

func (m *SupportMapper) CustomerToModel(c *entity.Customer) *model.Customer {
	if c == nil {
		return nil
	}

	return &model.Customer{
		Id:    c.Id,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
	}
}

func (m *SupportMapper) SessionToEntity(s *model.SupportSession) *entity.SupportSession {
	if s == nil {
		return nil
	}

	ctxFields := map[string]string{}
	if len(s.ContextFields) > 0 {
		_ = json.Unmarshal(s.ContextFields, &ctxFields)
	}

	return &entity.SupportSession{
		Id:            s.Id,
		CustomerId:    s.CustomerId,
		ProblemType:   s.ProblemType,
		Description:   s.Description,
		ScenarioId:    s.ScenarioId,
		Status:        s.Status,
		ContextFields: ctxFields,
		EngineState:   []byte(s.EngineState),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAtPtr(s.UpdatedAt),
	}
}

func (m *SupportMapper) SessionToModel(s *entity.SupportSession) *model.SupportSession {
	if s == nil {
		return nil
	}

	ctxFields, _ := json.Marshal(s.ContextFields)

	return &model.SupportSession{
		Id:            s.Id,
		CustomerId:    s.CustomerId,
		ProblemType:   s.ProblemType,
		Description:   s.Description,
		ScenarioId:    s.ScenarioId,
		Status:        s.Status,
		ContextFields: datatypes.JSON(ctxFields),
		EngineState:   datatypes.JSON(s.EngineState),
	}
}

func (m *SupportMapper) MessageToEntity(msg *model.SupportMessage) *entity.SupportMessage {
	if msg == nil {
		return nil
	}

	return &entity.SupportMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Outcome:   msg.Outcome,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *SupportMapper) MessageToModel(msg *entity.SupportMessage) *model.SupportMessage {
	if msg == nil {
		return nil
	}

	return &model.SupportMessage{
		Id:        msg.Id,
		SessionId: msg.SessionId,
		Role:      msg.Role,
		Content:   msg.Content,
		Outcome:   msg.Outcome,
	}
}

func updatedAtPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
