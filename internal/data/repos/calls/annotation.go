package calls

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type AnnotationRepo interface {
	Save(ctx context.Context, tx *gorm.DB, annotation *types.Annotation) error
	GetByCallID(ctx context.Context, tx *gorm.DB, callID string) (*types.Annotation, error)
	FailureModes(ctx context.Context, tx *gorm.DB) ([]types.FailureModeCount, error)
	ErrorTypeDistribution(ctx context.Context, tx *gorm.DB) ([]types.ErrorTypeCount, error)
}

type annotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationRepo {
	repoLog := baseLog.With("repo", "AnnotationRepo")
	return &annotationRepo{db: db, log: repoLog}
}

// Save writes the annotation for its call, replacing any earlier one.
func (ar *annotationRepo) Save(ctx context.Context, tx *gorm.DB, annotation *types.Annotation) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if annotation == nil {
		return errors.New("annotation is nil")
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "call_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"error_type", "error_type_custom", "observations",
				"failure_mode", "suggested_fix", "reviewed",
			}),
		}).
		Create(annotation).Error
}

func (ar *annotationRepo) GetByCallID(ctx context.Context, tx *gorm.DB, callID string) (*types.Annotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var out types.Annotation
	err := transaction.WithContext(ctx).Where("call_id = ?", callID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (ar *annotationRepo) FailureModes(ctx context.Context, tx *gorm.DB) ([]types.FailureModeCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	out := []types.FailureModeCount{}
	err := transaction.WithContext(ctx).
		Model(&types.Annotation{}).
		Select("failure_mode AS mode, COUNT(*) AS count").
		Where("failure_mode IS NOT NULL AND failure_mode <> ''").
		Group("failure_mode").
		Order("count DESC, mode ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ar *annotationRepo) ErrorTypeDistribution(ctx context.Context, tx *gorm.DB) ([]types.ErrorTypeCount, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	out := []types.ErrorTypeCount{}
	err := transaction.WithContext(ctx).
		Model(&types.Annotation{}).
		Select("COALESCE(error_type, error_type_custom, '" + types.Unclassified + "') AS type, COUNT(*) AS count").
		Group("type").
		Order("count DESC, type ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
