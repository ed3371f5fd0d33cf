package events

import "time"

// Event type codes published by the helpdesk.
const (
	TypeTicketEscalated = "TICKET_ESCALATED"
	TypeSessionResolved = "SESSION_RESOLVED"
	TypeKnowledgeReindex = "KNOWLEDGE_REINDEX"
)

// NewTicketEscalated is published when a troubleshooting session gives
// up and a technician ticket is created.
func NewTicketEscalated(ticketID, sessionID, scenarioID, reason, priority, team string) Event {
	return BaseEvent{
		Type: TypeTicketEscalated,
		Data: map[string]interface{}{
			"ticket_id":   ticketID,
			"session_id":  sessionID,
			"scenario_id": scenarioID,
			"reason":      reason,
			"priority":    priority,
			"team":        team,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionResolved is published when a customer confirms the problem
// is gone.
func NewSessionResolved(sessionID, scenarioID string, completedSteps int) Event {
	return BaseEvent{
		Type: TypeSessionResolved,
		Data: map[string]interface{}{
			"session_id":      sessionID,
			"scenario_id":     scenarioID,
			"completed_steps": completedSteps,
		},
		OccurredAt: time.Now(),
	}
}

// NewKnowledgeReindex requests a rebuild of the knowledge index.
func NewKnowledgeReindex(requestedBy string) Event {
	return BaseEvent{
		Type: TypeKnowledgeReindex,
		Data: map[string]interface{}{
			"requested_by": requestedBy,
		},
		OccurredAt: time.Now(),
	}
}
