package calls

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

// ListQuery narrows a call listing. Zero values mean no filter and no paging.
type ListQuery struct {
	Search      string
	FailureMode string
	// ErrorType matches errorType or errorTypeCustom; "unclassified" selects calls without an annotation.
	ErrorType string
	Page      int
	PageSize  int
}

type CallRepo interface {
	Save(ctx context.Context, tx *gorm.DB, call *types.Call) error
	GetByCallID(ctx context.Context, tx *gorm.DB, callID string) (*types.Call, error)
	List(ctx context.Context, tx *gorm.DB, q ListQuery) ([]*types.Call, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type callRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCallRepo(db *gorm.DB, baseLog *logger.Logger) CallRepo {
	repoLog := baseLog.With("repo", "CallRepo")
	return &callRepo{db: db, log: repoLog}
}

// Save inserts the call or replaces the row with the same callId.
func (cr *callRepo) Save(ctx context.Context, tx *gorm.DB, call *types.Call) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if call == nil {
		return errors.New("call is nil")
	}
	return transaction.WithContext(ctx).
		Omit("Annotation").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "call_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"severity", "bot", "date", "duration", "status", "confidence",
				"sentiment", "issues", "transcript", "history",
			}),
		}).
		Create(call).Error
}

func (cr *callRepo) GetByCallID(ctx context.Context, tx *gorm.DB, callID string) (*types.Call, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var out types.Call
	err := transaction.WithContext(ctx).
		Preload("Annotation").
		Where("call_id = ?", callID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (cr *callRepo) List(ctx context.Context, tx *gorm.DB, q ListQuery) ([]*types.Call, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	base := transaction.WithContext(ctx).Model(&types.Call{})
	errorType := strings.TrimSpace(q.ErrorType)
	switch {
	case strings.TrimSpace(q.FailureMode) != "":
		base = base.Joins("INNER JOIN annotations ON annotations.call_id = calls.call_id").
			Where("annotations.failure_mode = ?", strings.TrimSpace(q.FailureMode))
	case errorType == types.Unclassified:
		base = base.Joins("LEFT JOIN annotations ON annotations.call_id = calls.call_id").
			Where("annotations.id IS NULL")
	case errorType != "":
		base = base.Joins("INNER JOIN annotations ON annotations.call_id = calls.call_id").
			Where("annotations.error_type = ? OR annotations.error_type_custom = ?", errorType, errorType)
	case strings.TrimSpace(q.Search) != "":
		base = base.Joins("LEFT JOIN annotations ON annotations.call_id = calls.call_id")
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		like := "%" + s + "%"
		base = base.Where(
			"calls.call_id LIKE ? OR calls.bot LIKE ? OR calls.transcript LIKE ? OR annotations.observations LIKE ?",
			like, like, like, like,
		)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	find := base.Session(&gorm.Session{}).
		Select("calls.*").
		Preload("Annotation").
		Order("calls.date DESC")
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		find = find.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}
	var out []*types.Call
	if err := find.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Delete removes a call by row id together with its annotation.
func (cr *callRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var call types.Call
		if err := txx.Where("id = ?", id).First(&call).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := txx.Where("call_id = ?", call.CallID).Delete(&types.Annotation{}).Error; err != nil {
			return err
		}
		return txx.Delete(&call).Error
	})
}
