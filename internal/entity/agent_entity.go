package entity

import (
	"time"

	"github.com/google/uuid"
)

type Agent struct {
	Id           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Team         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
