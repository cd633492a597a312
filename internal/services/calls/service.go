package calls

import (
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/voicewatch-backend/internal/data/repos"
	types "github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/pkg/dbctx"
	"github.com/yungbote/voicewatch-backend/internal/platform/apierr"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
)

const DefaultPageSize = 8

type Page struct {
	Calls    []*types.Call `json:"calls"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

// Service owns the call review records: calls, annotations, test cases, tickets and prompts.
type Service interface {
	ListCalls(dbc dbctx.Context, q repos.CallListQuery) ([]*types.Call, error)
	PageCalls(dbc dbctx.Context, q repos.CallListQuery) (*Page, error)
	GetCall(dbc dbctx.Context, callID string) (*types.Call, error)
	SaveCall(dbc dbctx.Context, call *types.Call) error
	DeleteCall(dbc dbctx.Context, id string) error

	SaveAnnotation(dbc dbctx.Context, callID string, annotation *types.Annotation) error
	FailureModes(dbc dbctx.Context) ([]types.FailureModeCount, error)
	ErrorTypeDistribution(dbc dbctx.Context) ([]types.ErrorTypeCount, error)

	SaveTestCase(dbc dbctx.Context, tc *types.TestCase) error
	TestCasesByFailureMode(dbc dbctx.Context, failureMode string) ([]*types.TestCase, error)
	SaveTicket(dbc dbctx.Context, ticket *types.Ticket) error
	TicketsByFailureMode(dbc dbctx.Context, failureMode string) ([]*types.Ticket, error)

	ListPrompts(dbc dbctx.Context) ([]*types.Prompt, error)
	GetPrompt(dbc dbctx.Context, id string) (*types.Prompt, error)
	SavePrompt(dbc dbctx.Context, prompt *types.Prompt) error
	DeletePrompt(dbc dbctx.Context, id string) error
}

type service struct {
	log         *logger.Logger
	calls       repos.CallRepo
	annotations repos.AnnotationRepo
	testCases   repos.TestCaseRepo
	tickets     repos.TicketRepo
	prompts     repos.PromptRepo
}

func NewService(
	log *logger.Logger,
	calls repos.CallRepo,
	annotations repos.AnnotationRepo,
	testCases repos.TestCaseRepo,
	tickets repos.TicketRepo,
	prompts repos.PromptRepo,
) Service {
	return &service{
		log:         log.With("service", "CallService"),
		calls:       calls,
		annotations: annotations,
		testCases:   testCases,
		tickets:     tickets,
		prompts:     prompts,
	}
}

func (s *service) ListCalls(dbc dbctx.Context, q repos.CallListQuery) ([]*types.Call, error) {
	q.Page, q.PageSize = 0, 0
	out, _, err := s.calls.List(dbc.Context(), dbc.Tx, q)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.Call{}
	}
	return out, nil
}

func (s *service) PageCalls(dbc dbctx.Context, q repos.CallListQuery) (*Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	out, total, err := s.calls.List(dbc.Context(), dbc.Tx, q)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*types.Call{}
	}
	return &Page{Calls: out, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *service) GetCall(dbc dbctx.Context, callID string) (*types.Call, error) {
	call, err := s.calls.GetByCallID(dbc.Context(), dbc.Tx, strings.TrimSpace(callID))
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, apierr.NotFound("Call not found")
	}
	return call, nil
}

func (s *service) SaveCall(dbc dbctx.Context, call *types.Call) error {
	if call == nil || strings.TrimSpace(call.CallID) == "" {
		return apierr.BadRequest("callId is required")
	}
	if call.Date.IsZero() {
		call.Date = time.Now().UTC()
	}
	if call.Status == "" {
		call.Status = types.StatusCompleted
	}
	call.FillDerived()
	if err := s.calls.Save(dbc.Context(), dbc.Tx, call); err != nil {
		return err
	}
	s.log.Info("call saved", "call_id", call.CallID, "severity", call.Severity)
	return nil
}

func (s *service) DeleteCall(dbc dbctx.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierr.BadRequest("Call ID required")
	}
	return s.calls.Delete(dbc.Context(), dbc.Tx, id)
}

func (s *service) SaveAnnotation(dbc dbctx.Context, callID string, annotation *types.Annotation) error {
	callID = strings.TrimSpace(callID)
	if callID == "" || annotation == nil {
		return apierr.BadRequest("callId and annotation are required")
	}
	annotation.CallID = callID
	// Unknown error types are kept as custom text.
	if annotation.ErrorType != nil && !types.IsKnownErrorType(*annotation.ErrorType) {
		if annotation.ErrorTypeCustom == nil || strings.TrimSpace(*annotation.ErrorTypeCustom) == "" {
			custom := *annotation.ErrorType
			annotation.ErrorTypeCustom = &custom
		}
		annotation.ErrorType = nil
	}
	return s.annotations.Save(dbc.Context(), dbc.Tx, annotation)
}

func (s *service) FailureModes(dbc dbctx.Context) ([]types.FailureModeCount, error) {
	return s.annotations.FailureModes(dbc.Context(), dbc.Tx)
}

func (s *service) ErrorTypeDistribution(dbc dbctx.Context) ([]types.ErrorTypeCount, error) {
	return s.annotations.ErrorTypeDistribution(dbc.Context(), dbc.Tx)
}

func (s *service) SaveTestCase(dbc dbctx.Context, tc *types.TestCase) error {
	if tc == nil || strings.TrimSpace(tc.FailureMode) == "" || strings.TrimSpace(tc.TestCase) == "" {
		return apierr.BadRequest("failureMode and testCase are required")
	}
	if tc.Status != "" && !types.ValidTestCaseStatus(tc.Status) {
		return apierr.BadRequest(fmt.Sprintf("invalid status %q", tc.Status))
	}
	return s.testCases.Save(dbc.Context(), dbc.Tx, tc)
}

func (s *service) TestCasesByFailureMode(dbc dbctx.Context, failureMode string) ([]*types.TestCase, error) {
	if strings.TrimSpace(failureMode) == "" {
		return nil, apierr.BadRequest("failureMode parameter required")
	}
	return s.testCases.ListByFailureMode(dbc.Context(), dbc.Tx, failureMode)
}

func (s *service) SaveTicket(dbc dbctx.Context, ticket *types.Ticket) error {
	if ticket == nil || strings.TrimSpace(ticket.FailureMode) == "" || strings.TrimSpace(ticket.Title) == "" {
		return apierr.BadRequest("failureMode and title are required")
	}
	ticket.Priority = types.NormalizePriority(strings.ToLower(strings.TrimSpace(ticket.Priority)))
	switch ticket.Status {
	case "", types.TicketOpen, types.TicketInProgress, types.TicketResolved, types.TicketClosed:
	default:
		return apierr.BadRequest(fmt.Sprintf("invalid status %q", ticket.Status))
	}
	return s.tickets.Save(dbc.Context(), dbc.Tx, ticket)
}

func (s *service) TicketsByFailureMode(dbc dbctx.Context, failureMode string) ([]*types.Ticket, error) {
	if strings.TrimSpace(failureMode) == "" {
		return nil, apierr.BadRequest("failureMode parameter required")
	}
	return s.tickets.ListByFailureMode(dbc.Context(), dbc.Tx, failureMode)
}

func (s *service) ListPrompts(dbc dbctx.Context) ([]*types.Prompt, error) {
	return s.prompts.List(dbc.Context(), dbc.Tx)
}

func (s *service) GetPrompt(dbc dbctx.Context, id string) (*types.Prompt, error) {
	p, err := s.prompts.GetByID(dbc.Context(), dbc.Tx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("Prompt not found")
	}
	return p, nil
}

func (s *service) SavePrompt(dbc dbctx.Context, prompt *types.Prompt) error {
	if prompt == nil || strings.TrimSpace(prompt.Name) == "" || strings.TrimSpace(prompt.Content) == "" {
		return apierr.BadRequest("name and content are required")
	}
	return s.prompts.Save(dbc.Context(), dbc.Tx, prompt)
}

func (s *service) DeletePrompt(dbc dbctx.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apierr.BadRequest("Prompt ID required")
	}
	return s.prompts.Delete(dbc.Context(), dbc.Tx, id)
}
