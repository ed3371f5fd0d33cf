package dto

import (
	"time"

	"github.com/google/uuid"
)

type TicketResponse struct {
	Id        uuid.UUID              `json:"id"`
	SessionId uuid.UUID              `json:"session_id"`
	Category  string                 `json:"category"`
	Priority  string                 `json:"priority"`
	Team      string                 `json:"team"`
	Reason    string                 `json:"reason"`
	Status    string                 `json:"status"`
	Summary   string                 `json:"summary"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type UpdateTicketStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open assigned closed"`
}
