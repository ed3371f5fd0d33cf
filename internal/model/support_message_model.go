package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupportMessage struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Role      string         `gorm:"type:text;not null"`
	Content   string         `gorm:"type:text;not null"`
	Outcome   string         `gorm:"type:text"` // classification of customer messages, empty for assistant
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (SupportMessage) TableName() string {
	return "support_messages"
}
