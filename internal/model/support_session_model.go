package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SupportSession struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProblemType   string         `gorm:"type:text;not null;index"`
	Description   string         `gorm:"type:text"`
	ScenarioId    string         `gorm:"type:text;not null"`
	Status        string         `gorm:"type:text;not null;default:'active';index"`
	ContextFields datatypes.JSON `gorm:"type:jsonb"`
	EngineState   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (SupportSession) TableName() string {
	return "support_sessions"
}
