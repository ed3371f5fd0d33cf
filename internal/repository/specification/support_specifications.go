package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters rows belonging to one support session.
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByCustomerID filters sessions by owning customer.
type ByCustomerID struct {
	CustomerID uuid.UUID
}

func (s ByCustomerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("customer_id = ?", s.CustomerID)
}

// ByStatus filters by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByProblemType filters by reported problem category.
type ByProblemType struct {
	ProblemType string
}

func (s ByProblemType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("problem_type = ?", s.ProblemType)
}

// ByTeam filters tickets by assigned team.
type ByTeam struct {
	Team string
}

func (s ByTeam) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("team = ?", s.Team)
}

// ByEmail filters by email column.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByChunkType filters knowledge chunks by type.
type ByChunkType struct {
	ChunkType string
}

func (s ByChunkType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_type = ?", s.ChunkType)
}
