package calls

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Prompt is a saved system prompt revision for the voice agent.
type Prompt struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null;index" json:"name"`
	Content     string    `gorm:"column:content;not null" json:"content"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Version     int       `gorm:"column:version;not null;default:1" json:"version"`
	IsActive    bool      `gorm:"column:is_active;not null;default:false" json:"isActive"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Prompt) TableName() string { return "prompts" }

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Version <= 0 {
		p.Version = 1
	}
	return nil
}
