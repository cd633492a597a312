package calls

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"

	StatusCompleted = "Completed"
	StatusEscalated = "Escalated"
	StatusFailed    = "Failed"

	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Call is one recorded voice-agent conversation.
type Call struct {
	ID         string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	CallID     string         `gorm:"column:call_id;type:varchar(64);not null;uniqueIndex" json:"callId"`
	Severity   string         `gorm:"column:severity;not null;index" json:"severity"`
	Bot        string         `gorm:"column:bot;not null" json:"bot"`
	Date       time.Time      `gorm:"column:date;not null;index" json:"date"`
	Duration   int            `gorm:"column:duration;not null" json:"duration"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	Confidence int            `gorm:"column:confidence;not null" json:"confidence"`
	Sentiment  string         `gorm:"column:sentiment;not null" json:"sentiment"`
	Issues     datatypes.JSON `gorm:"column:issues" json:"issues"`
	Transcript string         `gorm:"column:transcript" json:"transcript,omitempty"`
	History    datatypes.JSON `gorm:"column:history" json:"history,omitempty"`
	Annotation *Annotation    `gorm:"foreignKey:CallID;references:CallID;constraint:OnDelete:CASCADE" json:"annotation,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"createdAt"`
}

func (Call) TableName() string { return "calls" }

func (c *Call) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IssueList decodes Issues, treating a missing or malformed column as no issues.
func (c *Call) IssueList() []string {
	var out []string
	if len(c.Issues) == 0 {
		return []string{}
	}
	if err := json.Unmarshal(c.Issues, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func (c *Call) SetIssues(issues []string) {
	if issues == nil {
		issues = []string{}
	}
	raw, _ := json.Marshal(issues)
	c.Issues = datatypes.JSON(raw)
}

// HistoryItems decodes the raw realtime session history.
func (c *Call) HistoryItems() []HistoryItem {
	if len(c.History) == 0 {
		return nil
	}
	var out []HistoryItem
	if err := json.Unmarshal(c.History, &out); err != nil {
		return nil
	}
	return out
}

// HistoryItem is the subset of a realtime session history entry the metrics look at.
type HistoryItem struct {
	Type string `json:"type"`
	Role string `json:"role,omitempty"`
}
