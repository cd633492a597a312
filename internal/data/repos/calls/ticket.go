package calls

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type TicketRepo interface {
	Save(ctx context.Context, tx *gorm.DB, ticket *types.Ticket) error
	ListByFailureMode(ctx context.Context, tx *gorm.DB, failureMode string) ([]*types.Ticket, error)
}

type ticketRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTicketRepo(db *gorm.DB, baseLog *logger.Logger) TicketRepo {
	repoLog := baseLog.With("repo", "TicketRepo")
	return &ticketRepo{db: db, log: repoLog}
}

func (tr *ticketRepo) Save(ctx context.Context, tx *gorm.DB, ticket *types.Ticket) error {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if ticket == nil {
		return errors.New("ticket is nil")
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"test_case_id", "failure_mode", "title", "description",
				"priority", "status", "assigned_to", "updated_at",
			}),
		}).
		Create(ticket).Error
}

// ListByFailureMode lists newest first. An empty failureMode lists everything.
func (tr *ticketRepo) ListByFailureMode(ctx context.Context, tx *gorm.DB, failureMode string) ([]*types.Ticket, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	q := transaction.WithContext(ctx).Model(&types.Ticket{})
	if failureMode != "" {
		q = q.Where("failure_mode = ?", failureMode)
	}
	out := []*types.Ticket{}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
