package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/voicewatch-backend/internal/data/repos"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

type Repos struct {
	Calls       repos.CallRepo
	Annotations repos.AnnotationRepo
	TestCases   repos.TestCaseRepo
	Tickets     repos.TicketRepo
	Prompts     repos.PromptRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Calls:       repos.NewCallRepo(db, log),
		Annotations: repos.NewAnnotationRepo(db, log),
		TestCases:   repos.NewTestCaseRepo(db, log),
		Tickets:     repos.NewTicketRepo(db, log),
		Prompts:     repos.NewPromptRepo(db, log),
	}
}
