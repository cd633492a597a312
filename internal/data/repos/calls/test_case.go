package calls

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type TestCaseRepo interface {
	Save(ctx context.Context, tx *gorm.DB, tc *types.TestCase) error
	ListByFailureMode(ctx context.Context, tx *gorm.DB, failureMode string) ([]*types.TestCase, error)
}

type testCaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTestCaseRepo(db *gorm.DB, baseLog *logger.Logger) TestCaseRepo {
	repoLog := baseLog.With("repo", "TestCaseRepo")
	return &testCaseRepo{db: db, log: repoLog}
}

func (tr *testCaseRepo) Save(ctx context.Context, tx *gorm.DB, tc *types.TestCase) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if tc == nil {
		return errors.New("test case is nil")
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"failure_mode", "test_case", "steps", "expected_result",
				"actual_result", "status", "updated_at",
			}),
		}).
		Create(tc).Error
}

// ListByFailureMode lists newest first. An empty failureMode lists everything.
func (tr *testCaseRepo) ListByFailureMode(ctx context.Context, tx *gorm.DB, failureMode string) ([]*types.TestCase, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	q := transaction.WithContext(ctx).Model(&types.TestCase{})
	if failureMode != "" {
		q = q.Where("failure_mode = ?", failureMode)
	}
	out := []*types.TestCase{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
