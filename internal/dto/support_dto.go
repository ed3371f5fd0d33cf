package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartSessionRequest struct {
	CustomerName  string            `json:"customer_name" validate:"required"`
	CustomerEmail string            `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string            `json:"customer_phone,omitempty"`
	ProblemType   string            `json:"problem_type" validate:"required"`
	Description   string            `json:"description,omitempty"`
	ContextFields map[string]string `json:"context_fields,omitempty"`
}

type StartSessionResponse struct {
	SessionId  uuid.UUID `json:"session_id"`
	ScenarioId string    `json:"scenario_id"`
	Status     string    `json:"status"`
	Reply      string    `json:"reply"`
	WaitTime   int       `json:"wait_time,omitempty"`
	TicketId   string    `json:"ticket_id,omitempty"`
}

type SendMessageRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Message   string    `json:"message" validate:"required"`
}

type SendMessageResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
	Outcome   string    `json:"outcome"`
	Reply     string    `json:"reply"`
	WaitTime  int       `json:"wait_time,omitempty"`
	TicketId  string    `json:"ticket_id,omitempty"`
}

type SessionHistoryResponse struct {
	SessionId uuid.UUID           `json:"session_id"`
	Status    string              `json:"status"`
	Messages  []HistoryMessageDTO `json:"messages"`
}

type HistoryMessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Outcome   string    `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
