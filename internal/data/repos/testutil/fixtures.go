package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
)

func SeedCall(tb testing.TB, ctx context.Context, tx *gorm.DB, callID, bot string, date time.Time) *types.Call {
	tb.Helper()
	c := &types.Call{
		CallID:     callID,
		Severity:   types.SeverityLow,
		Bot:        bot,
		Date:       date,
		Duration:   120,
		Status:     types.StatusCompleted,
		Confidence: 90,
		Sentiment:  types.SentimentNeutral,
		Transcript: "Agent: Hello. User: I need help with " + bot + ".",
	}
	c.SetIssues(nil)
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed call: %v", err)
	}
	return c
}

func SeedAnnotation(tb testing.TB, ctx context.Context, tx *gorm.DB, callID string, errorType, failureMode *string, observations string) *types.Annotation {
	tb.Helper()
	a := &types.Annotation{
		CallID:       callID,
		ErrorType:    errorType,
		FailureMode:  failureMode,
		Observations: observations,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed annotation: %v", err)
	}
	return a
}

// Str returns a pointer to s for optional string columns.
func Str(s string) *string { return &s }
