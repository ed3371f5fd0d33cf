package unitofwork

import (
	"context"

	"ai-helpdesk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	CustomerRepository() contract.CustomerRepository
	SupportSessionRepository() contract.SupportSessionRepository
	SupportMessageRepository() contract.SupportMessageRepository
	TicketRepository() contract.TicketRepository
	AgentRepository() contract.AgentRepository
	KnowledgeEmbeddingRepository() contract.KnowledgeEmbeddingRepository
}
