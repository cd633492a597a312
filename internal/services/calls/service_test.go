package calls

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/voicewatch-backend/internal/data/repos"
	"github.com/yungbote/voicewatch-backend/internal/data/repos/testutil"
	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/pkg/dbctx"
	"github.com/yungbote/voicewatch-backend/internal/platform/apierr"
)

func newTestService(t *testing.T) (Service, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewService(log,
		repos.NewCallRepo(db, log),
		repos.NewAnnotationRepo(db, log),
		repos.NewTestCaseRepo(db, log),
		repos.NewTicketRepo(db, log),
		repos.NewPromptRepo(db, log),
	)
	return svc, dbctx.Background()
}

func TestSaveCallFillsDerivedFields(t *testing.T) {
	svc, dbc := newTestService(t)
	call := &types.Call{CallID: "c-1", Bot: "billing", Date: time.Now().UTC(), Status: types.StatusEscalated}
	require.NoError(t, svc.SaveCall(dbc, call))

	got, err := svc.GetCall(dbc, "c-1")
	require.NoError(t, err)
	assert.NotEmpty(t, got.Severity)
	assert.Equal(t, types.SentimentNeutral, got.Sentiment)
	assert.NotNil(t, got.IssueList())

	_, err = svc.GetCall(dbc, "missing")
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))

	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(svc.SaveCall(dbc, &types.Call{})))
}

func TestPageCallsDefaults(t *testing.T) {
	svc, dbc := newTestService(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, svc.SaveCall(dbc, &types.Call{
			CallID: string(rune('a' + i)), Bot: "bot", Date: time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}))
	}
	page, err := svc.PageCalls(dbc, repos.CallListQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Len(t, page.Calls, DefaultPageSize)

	all, err := svc.ListCalls(dbc, repos.CallListQuery{Page: 3, PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, all, 10)
}

func TestSaveAnnotationMovesUnknownTypeToCustom(t *testing.T) {
	svc, dbc := newTestService(t)
	require.NoError(t, svc.SaveCall(dbc, &types.Call{CallID: "c-1", Bot: "bot"}))

	errType := "mispronounced name"
	a := &types.Annotation{ErrorType: &errType, Observations: "said Jon as John"}
	require.NoError(t, svc.SaveAnnotation(dbc, "c-1", a))
	assert.Nil(t, a.ErrorType)
	require.NotNil(t, a.ErrorTypeCustom)
	assert.Equal(t, "mispronounced name", *a.ErrorTypeCustom)

	dist, err := svc.ErrorTypeDistribution(dbc)
	require.NoError(t, err)
	require.Len(t, dist, 1)
	assert.Equal(t, "mispronounced name", dist[0].Type)

	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(svc.SaveAnnotation(dbc, "", a)))
}

func TestTicketAndTestCaseValidation(t *testing.T) {
	svc, dbc := newTestService(t)

	err := svc.SaveTestCase(dbc, &types.TestCase{FailureMode: "looping", TestCase: "TC", Status: "flaky"})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	require.NoError(t, svc.SaveTestCase(dbc, &types.TestCase{FailureMode: "looping", TestCase: "TC", Steps: "1"}))

	ticket := &types.Ticket{FailureMode: "looping", Title: "Loops", Description: "d", Priority: "HIGH"}
	require.NoError(t, svc.SaveTicket(dbc, ticket))
	assert.Equal(t, types.PriorityHigh, ticket.Priority)

	_, err = svc.TicketsByFailureMode(dbc, "")
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
	list, err := svc.TestCasesByFailureMode(dbc, "looping")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPromptLifecycle(t *testing.T) {
	svc, dbc := newTestService(t)
	p := &types.Prompt{Name: "agent", Content: "Be kind."}
	require.NoError(t, svc.SavePrompt(dbc, p))
	assert.Equal(t, 1, p.Version)

	got, err := svc.GetPrompt(dbc, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Be kind.", got.Content)

	require.NoError(t, svc.DeletePrompt(dbc, p.ID))
	_, err = svc.GetPrompt(dbc, p.ID)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(svc.DeletePrompt(dbc, "")))
}
