package calls

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"

	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

type Ticket struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	TestCaseID  *string   `gorm:"column:test_case_id;type:varchar(64);index" json:"testCaseId,omitempty"`
	FailureMode string    `gorm:"column:failure_mode;not null;index" json:"failureMode"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Priority    string    `gorm:"column:priority;not null;default:medium" json:"priority"`
	Status      string    `gorm:"column:status;not null;default:open" json:"status"`
	AssignedTo  string    `gorm:"column:assigned_to" json:"assignedTo,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Ticket) TableName() string { return "tickets" }

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = TicketOpen
	}
	return nil
}

// NormalizePriority maps free-form model output onto a known priority, defaulting to medium.
func NormalizePriority(p string) string {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p
	}
	return PriorityMedium
}
