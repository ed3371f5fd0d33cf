package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	TicketStatusOpen     = "open"
	TicketStatusAssigned = "assigned"
	TicketStatusClosed   = "closed"
)

// Ticket is created when a session escalates to a technician. Metadata
// carries the attempted/skipped steps so the technician does not repeat
// them.
type Ticket struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Category  string
	Priority  string
	Team      string
	Reason    string
	Status    string
	Summary   string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt *time.Time
}
