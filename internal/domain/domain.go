package domain

import (
	"github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

type (
	Document      = knowledge.Document
	Chunk         = knowledge.Chunk
	ChunkMetadata = knowledge.ChunkMetadata
	SearchResult  = knowledge.SearchResult
	IndexStats    = knowledge.IndexStats

	Call             = calls.Call
	Annotation       = calls.Annotation
	TestCase         = calls.TestCase
	Ticket           = calls.Ticket
	Prompt           = calls.Prompt
	FailureModeCount = calls.FailureModeCount
	ErrorTypeCount   = calls.ErrorTypeCount
)

// Models lists every gorm model for AutoMigrate.
func Models() []any {
	return []any{
		&calls.Call{},
		&calls.Annotation{},
		&calls.TestCase{},
		&calls.Ticket{},
		&calls.Prompt{},
	}
}
