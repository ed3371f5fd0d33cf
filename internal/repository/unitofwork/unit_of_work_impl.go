package unitofwork

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ai-helpdesk-be/internal/repository/contract"
	"ai-helpdesk-be/internal/repository/implementation"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) CustomerRepository() contract.CustomerRepository {
	return implementation.NewCustomerRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SupportSessionRepository() contract.SupportSessionRepository {
	return implementation.NewSupportSessionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SupportMessageRepository() contract.SupportMessageRepository {
	return implementation.NewSupportMessageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TicketRepository() contract.TicketRepository {
	return implementation.NewTicketRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AgentRepository() contract.AgentRepository {
	return implementation.NewAgentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) KnowledgeEmbeddingRepository() contract.KnowledgeEmbeddingRepository {
	return implementation.NewKnowledgeEmbeddingRepository(u.getDB())
}
