package calls

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Known reviewer error types. Anything else goes into ErrorTypeCustom.
var ErrorTypes = []string{
	"tone_mismatch",
	"missing_information",
	"incorrect_response",
	"technical_error",
	"timeout",
	"user_confusion",
	"hallucination",
	"ext_transfer",
	"csr_transfer",
	"expected",
	"unexpected",
	"unknown",
	"other",
}

const Unclassified = "unclassified"

// Annotation is a reviewer's verdict on a call. A call has at most one.
type Annotation struct {
	ID              string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	CallID          string    `gorm:"column:call_id;type:varchar(64);not null;uniqueIndex" json:"callId"`
	ErrorType       *string   `gorm:"column:error_type;index" json:"errorType,omitempty"`
	ErrorTypeCustom *string   `gorm:"column:error_type_custom" json:"errorTypeCustom,omitempty"`
	Observations    string    `gorm:"column:observations;not null" json:"observations"`
	FailureMode     *string   `gorm:"column:failure_mode;index" json:"failureMode,omitempty"`
	SuggestedFix    *string   `gorm:"column:suggested_fix" json:"suggestedFix,omitempty"`
	Reviewed        bool      `gorm:"column:reviewed;not null;default:false" json:"reviewed"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Annotation) TableName() string { return "annotations" }

func (a *Annotation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func IsKnownErrorType(t string) bool {
	for _, known := range ErrorTypes {
		if known == t {
			return true
		}
	}
	return false
}

// FailureModeCount is one row of the failure-mode leaderboard.
type FailureModeCount struct {
	Mode  string `json:"mode"`
	Count int64  `json:"count"`
}

// ErrorTypeCount is one row of the error-type distribution.
type ErrorTypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}
