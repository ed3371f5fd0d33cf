package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Ticket struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Category  string         `gorm:"type:text;not null;index"`
	Priority  string         `gorm:"type:text;not null"`
	Team      string         `gorm:"type:text;index"`
	Reason    string         `gorm:"type:text;not null"`
	Status    string         `gorm:"type:text;not null;default:'open';index"`
	Summary   string         `gorm:"type:text"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"` // attempted/skipped steps, context fields
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Ticket) TableName() string {
	return "tickets"
}
