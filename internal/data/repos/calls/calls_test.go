package calls

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/voicewatch-backend/internal/data/repos/testutil"
	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
)

func TestCallRepoListOrdersAndPaginates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCallRepo(db, testutil.Logger(t))

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"c1", "c2", "c3"} {
		testutil.SeedCall(t, ctx, tx, id, "billing", base.Add(time.Duration(i)*time.Hour))
	}
	testutil.SeedAnnotation(t, ctx, tx, "c2", testutil.Str("transfer"), testutil.Str("looping"), "asked twice")

	all, total, err := repo.List(ctx, tx, ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("List: total=%d len=%d", total, len(all))
	}
	if all[0].CallID != "c3" || all[2].CallID != "c1" {
		t.Fatalf("List: expected date desc, got %s..%s", all[0].CallID, all[2].CallID)
	}
	if all[1].Annotation == nil || all[1].Annotation.Observations != "asked twice" {
		t.Fatalf("List: annotation not preloaded: %+v", all[1].Annotation)
	}

	page, total, err := repo.List(ctx, tx, ListQuery{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if total != 3 || len(page) != 1 || page[0].CallID != "c1" {
		t.Fatalf("List page 2: total=%d got=%v", total, page)
	}
}

func TestCallRepoFilters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCallRepo(db, testutil.Logger(t))

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedCall(t, ctx, tx, "a-1", "billing", now)
	testutil.SeedCall(t, ctx, tx, "b-2", "shipping", now.Add(time.Minute))
	testutil.SeedCall(t, ctx, tx, "c-3", "billing", now.Add(2*time.Minute))
	testutil.SeedAnnotation(t, ctx, tx, "a-1", testutil.Str("transfer"), testutil.Str("looping"), "repeated greeting")
	testutil.SeedAnnotation(t, ctx, tx, "b-2", nil, testutil.Str("tone"), "curt reply")

	byMode, _, err := repo.List(ctx, tx, ListQuery{FailureMode: "looping"})
	if err != nil || len(byMode) != 1 || byMode[0].CallID != "a-1" {
		t.Fatalf("failure mode filter: got=%v err=%v", byMode, err)
	}

	bySearch, _, err := repo.List(ctx, tx, ListQuery{Search: "curt"})
	if err != nil || len(bySearch) != 1 || bySearch[0].CallID != "b-2" {
		t.Fatalf("search on observations: got=%v err=%v", bySearch, err)
	}

	bySearch, _, err = repo.List(ctx, tx, ListQuery{Search: "billing"})
	if err != nil || len(bySearch) != 2 {
		t.Fatalf("search on bot: got=%d err=%v", len(bySearch), err)
	}

	unclassified, _, err := repo.List(ctx, tx, ListQuery{ErrorType: types.Unclassified})
	if err != nil || len(unclassified) != 1 || unclassified[0].CallID != "c-3" {
		t.Fatalf("unclassified: got=%v err=%v", unclassified, err)
	}

	byType, _, err := repo.List(ctx, tx, ListQuery{ErrorType: "transfer"})
	if err != nil || len(byType) != 1 || byType[0].CallID != "a-1" {
		t.Fatalf("error type: got=%v err=%v", byType, err)
	}
}

func TestCallRepoSaveReplacesByCallID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCallRepo(db, testutil.Logger(t))

	call := &types.Call{CallID: "dup", Severity: types.SeverityLow, Bot: "v1", Date: time.Now().UTC(), Status: types.StatusCompleted, Sentiment: types.SentimentNeutral}
	call.SetIssues(nil)
	if err := repo.Save(ctx, tx, call); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again := &types.Call{CallID: "dup", Severity: types.SeverityHigh, Bot: "v2", Date: time.Now().UTC(), Status: types.StatusFailed, Sentiment: types.SentimentNeutral}
	again.SetIssues([]string{"Fallback"})
	if err := repo.Save(ctx, tx, again); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := repo.GetByCallID(ctx, tx, "dup")
	if err != nil || got == nil {
		t.Fatalf("GetByCallID: got=%v err=%v", got, err)
	}
	if got.Bot != "v2" || got.Severity != types.SeverityHigh || len(got.IssueList()) != 1 {
		t.Fatalf("Save did not replace: %+v", got)
	}
	_, total, _ := repo.List(ctx, tx, ListQuery{})
	if total != 1 {
		t.Fatalf("expected a single row, got %d", total)
	}

	missing, err := repo.GetByCallID(ctx, tx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("GetByCallID missing: got=%v err=%v", missing, err)
	}
}

func TestCallRepoDeleteRemovesAnnotation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	calls := NewCallRepo(db, testutil.Logger(t))
	annotations := NewAnnotationRepo(db, testutil.Logger(t))

	c := testutil.SeedCall(t, ctx, tx, "gone", "billing", time.Now().UTC())
	testutil.SeedAnnotation(t, ctx, tx, "gone", nil, nil, "note")

	if err := calls.Delete(ctx, tx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := calls.GetByCallID(ctx, tx, "gone"); got != nil {
		t.Fatalf("call still present")
	}
	if got, _ := annotations.GetByCallID(ctx, tx, "gone"); got != nil {
		t.Fatalf("annotation still present")
	}
	if err := calls.Delete(ctx, tx, "missing-id"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestAnnotationRepoAggregates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAnnotationRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	for _, id := range []string{"a", "b", "c", "d"} {
		testutil.SeedCall(t, ctx, tx, id, "bot", now)
	}
	testutil.SeedAnnotation(t, ctx, tx, "a", testutil.Str("transfer"), testutil.Str("looping"), "x")
	testutil.SeedAnnotation(t, ctx, tx, "b", testutil.Str("transfer"), testutil.Str("looping"), "y")
	testutil.SeedAnnotation(t, ctx, tx, "c", nil, testutil.Str(""), "z")
	if err := repo.Save(ctx, tx, &types.Annotation{CallID: "d", ErrorTypeCustom: testutil.Str("pronunciation"), FailureMode: testutil.Str("tone"), Observations: "w"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	modes, err := repo.FailureModes(ctx, tx)
	if err != nil {
		t.Fatalf("FailureModes: %v", err)
	}
	if len(modes) != 2 || modes[0] != (types.FailureModeCount{Mode: "looping", Count: 2}) || modes[1].Mode != "tone" {
		t.Fatalf("FailureModes: got=%+v", modes)
	}

	dist, err := repo.ErrorTypeDistribution(ctx, tx)
	if err != nil {
		t.Fatalf("ErrorTypeDistribution: %v", err)
	}
	want := map[string]int64{"transfer": 2, "pronunciation": 1, types.Unclassified: 1}
	if len(dist) != len(want) {
		t.Fatalf("ErrorTypeDistribution: got=%+v", dist)
	}
	for _, row := range dist {
		if want[row.Type] != row.Count {
			t.Fatalf("ErrorTypeDistribution row %q: want=%d got=%d", row.Type, want[row.Type], row.Count)
		}
	}
	if dist[0].Type != "transfer" {
		t.Fatalf("ErrorTypeDistribution: expected count desc, got=%+v", dist)
	}
}

func TestAnnotationRepoSaveReplacesPerCall(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewAnnotationRepo(db, testutil.Logger(t))
	testutil.SeedCall(t, ctx, tx, "one", "bot", time.Now().UTC())

	if err := repo.Save(ctx, tx, &types.Annotation{CallID: "one", Observations: "first"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, tx, &types.Annotation{CallID: "one", Observations: "second", Reviewed: true}); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err := repo.GetByCallID(ctx, tx, "one")
	if err != nil || got == nil {
		t.Fatalf("GetByCallID: got=%v err=%v", got, err)
	}
	if got.Observations != "second" || !got.Reviewed {
		t.Fatalf("annotation not replaced: %+v", got)
	}
}

func TestTestCaseAndTicketRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	tcs := NewTestCaseRepo(db, testutil.Logger(t))
	tickets := NewTicketRepo(db, testutil.Logger(t))

	tc := &types.TestCase{FailureMode: "looping", TestCase: "TC_LOOP_001", Steps: "say hi twice"}
	if err := tcs.Save(ctx, tx, tc); err != nil {
		t.Fatalf("Save test case: %v", err)
	}
	if tc.Status != types.TestCaseDraft {
		t.Fatalf("default status: got=%q", tc.Status)
	}
	tc.Status = types.TestCaseReproduced
	if err := tcs.Save(ctx, tx, tc); err != nil {
		t.Fatalf("update test case: %v", err)
	}
	if err := tcs.Save(ctx, tx, &types.TestCase{FailureMode: "tone", TestCase: "TC_TONE_001", Steps: "be rude"}); err != nil {
		t.Fatalf("Save other test case: %v", err)
	}

	got, err := tcs.ListByFailureMode(ctx, tx, "looping")
	if err != nil || len(got) != 1 || got[0].Status != types.TestCaseReproduced {
		t.Fatalf("ListByFailureMode: got=%v err=%v", got, err)
	}
	all, _ := tcs.ListByFailureMode(ctx, tx, "")
	if len(all) != 2 {
		t.Fatalf("ListByFailureMode all: got=%d", len(all))
	}

	ticket := &types.Ticket{TestCaseID: testutil.Str(tc.ID), FailureMode: "looping", Title: "Agent loops", Description: "..."}
	if err := tickets.Save(ctx, tx, ticket); err != nil {
		t.Fatalf("Save ticket: %v", err)
	}
	if ticket.Priority != types.PriorityMedium || ticket.Status != types.TicketOpen {
		t.Fatalf("ticket defaults: %+v", ticket)
	}
	list, err := tickets.ListByFailureMode(ctx, tx, "looping")
	if err != nil || len(list) != 1 || *list[0].TestCaseID != tc.ID {
		t.Fatalf("tickets: got=%v err=%v", list, err)
	}
}

func TestPromptRepoActivationIsExclusive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewPromptRepo(db, testutil.Logger(t))

	v1 := &types.Prompt{Name: "agent", Content: "v1", IsActive: true}
	if err := repo.Save(ctx, tx, v1); err != nil {
		t.Fatalf("Save v1: %v", err)
	}
	v2 := &types.Prompt{Name: "agent", Content: "v2", Version: 2, IsActive: true}
	if err := repo.Save(ctx, tx, v2); err != nil {
		t.Fatalf("Save v2: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, v1.ID)
	if err != nil || got == nil || got.IsActive {
		t.Fatalf("v1 should be inactive: got=%+v err=%v", got, err)
	}
	list, err := repo.List(ctx, tx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: got=%d err=%v", len(list), err)
	}

	if err := repo.Delete(ctx, tx, v1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.GetByID(ctx, tx, v1.ID); got != nil {
		t.Fatalf("prompt not deleted")
	}
}
