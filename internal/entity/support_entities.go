package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session status lifecycle.
const (
	SessionStatusActive    = "active"
	SessionStatusResolved  = "resolved"
	SessionStatusEscalated = "escalated"
	SessionStatusAbandoned = "abandoned"
)

type Customer struct {
	Id        uuid.UUID
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// SupportSession is one guided troubleshooting conversation. EngineState
// is the serialized step-engine record so a session survives restarts
// and load-balanced instances.
type SupportSession struct {
	Id            uuid.UUID
	CustomerId    uuid.UUID
	ProblemType   string
	Description   string
	ScenarioId    string
	Status        string
	ContextFields map[string]string
	EngineState   []byte
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// Message roles in a support conversation.
const (
	RoleCustomer  = "customer"
	RoleAssistant = "assistant"
)

type SupportMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Content   string
	Outcome   string
	CreatedAt time.Time
}
