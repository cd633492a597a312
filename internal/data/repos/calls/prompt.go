package calls

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type PromptRepo interface {
	Save(ctx context.Context, tx *gorm.DB, prompt *types.Prompt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Prompt, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Prompt, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type promptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptRepo(db *gorm.DB, baseLog *logger.Logger) PromptRepo {
	repoLog := baseLog.With("repo", "PromptRepo")
	return &promptRepo{db: db, log: repoLog}
}

// Save upserts by id. Activating a prompt deactivates every other prompt with the same name.
func (pr *promptRepo) Save(ctx context.Context, tx *gorm.DB, prompt *types.Prompt) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if prompt == nil {
		return errors.New("prompt is nil")
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "content", "description", "version", "is_active", "updated_at",
			}),
		}).Create(prompt).Error; err != nil {
			return err
		}
		if !prompt.IsActive {
			return nil
		}
		return txx.Model(&types.Prompt{}).
			Where("name = ? AND id <> ?", prompt.Name, prompt.ID).
			Update("is_active", false).Error
	})
}

func (pr *promptRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*types.Prompt, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var out types.Prompt
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (pr *promptRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Prompt, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	out := []*types.Prompt{}
	if err := transaction.WithContext(ctx).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (pr *promptRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Where("id = ?", id).Delete(&types.Prompt{}).Error
}
