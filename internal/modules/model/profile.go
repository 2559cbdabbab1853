package model

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ActivationCode string    `gorm:"type:varchar(8);not null;default:''" json:"-"`
	CodeCreatedAt  time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"code_created_at"`
}

func (Profile) TableName() string { return "profiles" }
