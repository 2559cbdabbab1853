package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Content   *string    `gorm:"type:text" json:"content"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	IsPublic  bool       `gorm:"not null;default:false" json:"is_public"`
	PublicID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;<-:create" json:"public_id"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Note <-> User
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"author,omitempty"`

	// Note <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"project,omitempty"`
}

func (Note) TableName() string { return "notes" }

// BeforeCreate assigns the public identifier once; the column is create-only afterwards.
func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.PublicID == uuid.Nil {
		n.PublicID = uuid.New()
	}
	return nil
}

// NoteSummary is the cached sidebar row.
type NoteSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}
