package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ai-helpdesk-be/internal/pkg/logger"
)

const alertChannel = "helpdesk_alerts"

// Alert is the payload pushed to connected agents.
type Alert struct {
	Type      string                 `json:"type"`
	TicketId  string                 `json:"ticket_id,omitempty"`
	SessionId string                 `json:"session_id,omitempty"`
	Category  string                 `json:"category,omitempty"`
	Priority  string                 `json:"priority,omitempty"`
	Team      string                 `json:"team,omitempty"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Hub fans escalation alerts out to connected agent dashboards. Redis
// pub/sub carries alerts between instances when more than one backend
// runs behind a balancer.
type Hub struct {
	// AgentID -> connections, one agent may have several tabs open
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.AgentID] = append(h.clients[client.AgentID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Agent connected", map[string]interface{}{"agent_id": client.AgentID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.AgentID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.AgentID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.AgentID]) == 0 {
					delete(h.clients, client.AgentID)
					h.logger.Info("Hub", "Agent fully disconnected", map[string]interface{}{"agent_id": client.AgentID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes an alert to every connected agent.
func (h *Hub) Broadcast(alert Alert) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "alert",
		"data": alert,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_agent_id": "*",
			"message":         data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), alertChannel, jsonPayload)
	}
}

// Send delivers an alert to one agent on every instance.
func (h *Hub) Send(agentID uuid.UUID, alert Alert) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "alert",
		"data": alert,
	})

	h.mu.RLock()
	clients, localFound := h.clients[agentID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping alert", map[string]interface{}{"agent_id": agentID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_agent_id": agentID.String(),
			"message":         data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), alertChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, alertChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetAgentID string          `json:"target_agent_id"`
			Message       json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetAgentID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		uid, err := uuid.Parse(payload.TargetAgentID)
		if err != nil {
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[uid]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
