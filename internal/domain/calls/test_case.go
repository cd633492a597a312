package calls

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TestCaseDraft      = "draft"
	TestCaseReady      = "ready"
	TestCaseTested     = "tested"
	TestCaseReproduced = "reproduced"
)

type TestCase struct {
	ID             string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	FailureMode    string    `gorm:"column:failure_mode;not null;index" json:"failureMode"`
	TestCase       string    `gorm:"column:test_case;not null" json:"testCase"`
	Steps          string    `gorm:"column:steps;not null" json:"steps"`
	ExpectedResult string    `gorm:"column:expected_result" json:"expectedResult,omitempty"`
	ActualResult   string    `gorm:"column:actual_result" json:"actualResult,omitempty"`
	Status         string    `gorm:"column:status;not null;default:draft" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (TestCase) TableName() string { return "test_cases" }

func (t *TestCase) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TestCaseDraft
	}
	return nil
}

func ValidTestCaseStatus(s string) bool {
	switch s {
	case TestCaseDraft, TestCaseReady, TestCaseTested, TestCaseReproduced:
		return true
	}
	return false
}
