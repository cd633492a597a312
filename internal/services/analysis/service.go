package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/domain/calls"
	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
	"github.com/yungbote/voicewatch-backend/internal/platform/apierr"
	"github.com/yungbote/voicewatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/voicewatch-backend/internal/platform/logger"
	"github.com/yungbote/voicewatch-backend/internal/platform/openai"
	knowledgesvc "github.com/yungbote/voicewatch-backend/internal/services/knowledge"
)

const (
	chatFallback            = "I'm sorry, I couldn't generate a response."
	suggestTranscriptRunes  = 2000
	exampleTranscriptRunes  = 500
	defaultKnowledgeResults = 3
)

// KnowledgeSearcher is the retrieval half of the knowledge service.
type KnowledgeSearcher interface {
	SearchKnowledgeBase(ctx context.Context, query string, limit int) ([]knowledge.SearchResult, error)
}

type ChatRequest struct {
	Message           string          `json:"message"`
	ErrorDistribution json.RawMessage `json:"errorDistribution,omitempty"`
	FailureModes      json.RawMessage `json:"failureModes,omitempty"`
	Context           string          `json:"context,omitempty"`
	UseKnowledgeBase  bool            `json:"useKnowledgeBase,omitempty"`
	KnowledgeLimit    int             `json:"knowledgeLimit,omitempty"`
}

type ChatReply struct {
	Response string                   `json:"response"`
	Sources  []knowledge.SearchResult `json:"sources,omitempty"`
}

type FailureModeGroup struct {
	Mode         string `json:"mode"`
	Observations []int  `json:"observations"`
	Description  string `json:"description,omitempty"`
}

type FixByMode struct {
	Mode string `json:"mode"`
	Fix  string `json:"fix"`
}

type Categorization struct {
	FailureModes []FailureModeGroup `json:"failureModes"`
	Suggestions  []FixByMode        `json:"suggestions"`
}

type SuggestFixRequest struct {
	FailureMode  string `json:"failureMode"`
	Observations Lines  `json:"observations"`
	Transcript   string `json:"transcript,omitempty"`
}

type FixSuggestion struct {
	SuggestedFix   string `json:"suggestedFix"`
	Implementation string `json:"implementation"`
	Rationale      string `json:"rationale"`
}

type ExampleCall struct {
	CallID     string `json:"callId"`
	Transcript string `json:"transcript,omitempty"`
	Annotation *struct {
		Observations string `json:"observations"`
	} `json:"annotation,omitempty"`
}

type GenerateTestCaseRequest struct {
	FailureMode  string        `json:"failureMode"`
	Observations Lines         `json:"observations,omitempty"`
	ExampleCalls []ExampleCall `json:"exampleCalls,omitempty"`
}

type TestCaseDraft struct {
	TestCaseID       string `json:"testCaseId"`
	TestScenario     string `json:"testScenario"`
	PersonaType      string `json:"personaType"`
	UserInput        string `json:"userInput"`
	ExpectedResponse string `json:"expectedResponse"`
	EscalationPath   string `json:"escalationPath"`
}

type CreateTicketRequest struct {
	FailureMode        string          `json:"failureMode"`
	TestCase           json.RawMessage `json:"testCase"`
	Observations       Lines           `json:"observations,omitempty"`
	ProblemDescription string          `json:"problemDescription,omitempty"`
}

type TicketDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type Service interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatReply, error)
	Categorize(ctx context.Context, observations []string) (*Categorization, error)
	SuggestFix(ctx context.Context, req SuggestFixRequest) (*FixSuggestion, error)
	GenerateTestCase(ctx context.Context, req GenerateTestCaseRequest) (*TestCaseDraft, error)
	CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketDraft, error)
}

type service struct {
	log       *logger.Logger
	llm       openai.Client
	knowledge KnowledgeSearcher
}

// NewService builds the analysis service. knowledge may be nil, in which case chat
// requests asking for knowledge base grounding are answered without it.
func NewService(log *logger.Logger, llm openai.Client, knowledge KnowledgeSearcher) Service {
	return &service{
		log:       log.With("service", "AnalysisService"),
		llm:       llm,
		knowledge: knowledge,
	}
}

func (s *service) Chat(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	ctx = ctxutil.Default(ctx)
	if strings.TrimSpace(req.Message) == "" {
		return nil, apierr.BadRequest("Message is required")
	}

	reply := &ChatReply{}
	extra := ""
	if c := strings.TrimSpace(req.Context); c != "" {
		extra = "- Additional Context: " + c + "\n"
	}
	if req.UseKnowledgeBase && s.knowledge != nil {
		limit := req.KnowledgeLimit
		if limit <= 0 {
			limit = defaultKnowledgeResults
		}
		results, err := s.knowledge.SearchKnowledgeBase(ctx, req.Message, limit)
		if err != nil {
			// The assistant still answers without grounding.
			s.log.Warn("knowledge base lookup failed", append(ctxutil.LogFields(ctx), "error", err)...)
		} else {
			reply.Sources = results
			extra += fmt.Sprintf(knowledgeSection, knowledgesvc.FormatResults(results))
		}
	}

	system := fmt.Sprintf(chatSystemPrompt, rawOrNoData(req.ErrorDistribution), rawOrNoData(req.FailureModes), extra)
	text, err := s.llm.GenerateText(ctx,
		[]openai.Message{openai.System(system), openai.User(req.Message)},
		openai.ChatOptions{Temperature: openai.Temperature(0.7)},
	)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = chatFallback
	}
	reply.Response = text
	return reply, nil
}

func (s *service) Categorize(ctx context.Context, observations []string) (*Categorization, error) {
	if observations == nil {
		return nil, apierr.BadRequest("Invalid observations")
	}
	var list strings.Builder
	for i, o := range observations {
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%d. %s", i+1, o)
	}
	obj, err := s.llm.GenerateJSON(ctxutil.Default(ctx),
		[]openai.Message{openai.System(categorizeSystemPrompt), openai.User(fmt.Sprintf(categorizePrompt, list.String()))},
		openai.ChatOptions{Temperature: openai.Temperature(0.3)},
	)
	if err != nil {
		return nil, err
	}
	out := &Categorization{}
	if err := remarshal(obj, out); err != nil {
		return nil, err
	}
	if out.FailureModes == nil {
		out.FailureModes = []FailureModeGroup{}
	}
	if out.Suggestions == nil {
		out.Suggestions = []FixByMode{}
	}
	return out, nil
}

func (s *service) SuggestFix(ctx context.Context, req SuggestFixRequest) (*FixSuggestion, error) {
	if strings.TrimSpace(req.FailureMode) == "" || req.Observations == nil {
		return nil, apierr.BadRequest("Missing required fields")
	}
	transcript := ""
	if t := strings.TrimSpace(req.Transcript); t != "" {
		transcript = "Call Transcript:\n" + truncateRunes(t, suggestTranscriptRunes) + "\n"
	}
	prompt := fmt.Sprintf(suggestFixPrompt, req.FailureMode, req.Observations.Join(), transcript)
	obj, err := s.llm.GenerateJSON(ctxutil.Default(ctx),
		[]openai.Message{openai.System(suggestFixSystemPrompt), openai.User(prompt)},
		openai.ChatOptions{Temperature: openai.Temperature(0.3)},
	)
	if err != nil {
		return nil, err
	}
	out := &FixSuggestion{}
	if err := remarshal(obj, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) GenerateTestCase(ctx context.Context, req GenerateTestCaseRequest) (*TestCaseDraft, error) {
	if strings.TrimSpace(req.FailureMode) == "" {
		return nil, apierr.BadRequest("Missing failureMode")
	}
	obs := ""
	if !req.Observations.Empty() {
		obs = "Observations:\n" + req.Observations.Join() + "\n"
	}
	examples := ""
	if len(req.ExampleCalls) > 0 {
		parts := make([]string, 0, len(req.ExampleCalls))
		for i, c := range req.ExampleCalls {
			transcript := "N/A"
			if strings.TrimSpace(c.Transcript) != "" {
				transcript = truncateRunes(c.Transcript, exampleTranscriptRunes)
			}
			notes := "N/A"
			if c.Annotation != nil && strings.TrimSpace(c.Annotation.Observations) != "" {
				notes = c.Annotation.Observations
			}
			parts = append(parts, fmt.Sprintf("%d. Call ID: %s\n   Transcript: %s\n   Observations: %s", i+1, c.CallID, transcript, notes))
		}
		examples = "Example calls that exhibited this failure:\n" + strings.Join(parts, "\n\n") + "\n"
	}
	text, err := s.llm.GenerateText(ctxutil.Default(ctx),
		[]openai.Message{openai.System(testCaseSystemPrompt), openai.User(fmt.Sprintf(testCasePrompt, req.FailureMode, obs, examples))},
		openai.ChatOptions{Temperature: openai.Temperature(0.3)},
	)
	if err != nil {
		return nil, err
	}
	out := &TestCaseDraft{}
	if err := decodeModelJSON(text, out); err != nil {
		s.log.Warn("test case generation returned unparseable output", "failure_mode", req.FailureMode, "error", err)
		return nil, err
	}
	return out, nil
}

func (s *service) CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketDraft, error) {
	testCase := testCaseText(req.TestCase)
	if strings.TrimSpace(req.FailureMode) == "" || testCase == "" {
		return nil, apierr.BadRequest("Missing required fields")
	}
	obs := ""
	if !req.Observations.Empty() {
		obs = "Observations:\n" + req.Observations.Join() + "\n"
	}
	problem := ""
	if p := strings.TrimSpace(req.ProblemDescription); p != "" {
		problem = "Problem Description:\n" + p + "\n"
	}
	text, err := s.llm.GenerateText(ctxutil.Default(ctx),
		[]openai.Message{openai.System(ticketSystemPrompt), openai.User(fmt.Sprintf(ticketPrompt, req.FailureMode, testCase, obs, problem))},
		openai.ChatOptions{Temperature: openai.Temperature(0.3)},
	)
	if err != nil {
		return nil, err
	}
	out := &TicketDraft{}
	if err := decodeModelJSON(text, out); err != nil {
		s.log.Warn("ticket generation returned unparseable output", "failure_mode", req.FailureMode, "error", err)
		return nil, err
	}
	out.Priority = calls.NormalizePriority(strings.ToLower(strings.TrimSpace(out.Priority)))
	return out, nil
}

// testCaseText renders a string test case as-is and anything else as indented JSON.
func testCaseText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

func rawOrNoData(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "No data"
	}
	return string(trimmed)
}
