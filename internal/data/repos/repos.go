package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/voicewatch-backend/internal/data/repos/calls"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type CallRepo = calls.CallRepo
type CallListQuery = calls.ListQuery
type AnnotationRepo = calls.AnnotationRepo
type TestCaseRepo = calls.TestCaseRepo
type TicketRepo = calls.TicketRepo
type PromptRepo = calls.PromptRepo

func NewCallRepo(db *gorm.DB, baseLog *logger.Logger) CallRepo { return calls.NewCallRepo(db, baseLog) }
func NewAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationRepo {
	return calls.NewAnnotationRepo(db, baseLog)
}
func NewTestCaseRepo(db *gorm.DB, baseLog *logger.Logger) TestCaseRepo {
	return calls.NewTestCaseRepo(db, baseLog)
}
func NewTicketRepo(db *gorm.DB, baseLog *logger.Logger) TicketRepo {
	return calls.NewTicketRepo(db, baseLog)
}
func NewPromptRepo(db *gorm.DB, baseLog *logger.Logger) PromptRepo {
	return calls.NewPromptRepo(db, baseLog)
}
