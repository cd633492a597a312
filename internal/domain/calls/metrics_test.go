package calls

import (
	"reflect"
	"testing"
)

func history(assistant, other int) []HistoryItem {
	out := make([]HistoryItem, 0, assistant+other)
	for i := 0; i < assistant; i++ {
		out = append(out, HistoryItem{Type: "message", Role: "assistant"})
	}
	for i := 0; i < other; i++ {
		out = append(out, HistoryItem{Type: "message", Role: "user"})
	}
	return out
}

func TestCalculateConfidence(t *testing.T) {
	cases := []struct {
		name string
		in   []HistoryItem
		want int
	}{
		{name: "empty", in: nil, want: 0},
		{name: "all assistant", in: history(4, 0), want: 100},
		{name: "one third", in: history(1, 2), want: 33},
		{name: "two thirds", in: history(2, 1), want: 67},
		{name: "function calls ignored", in: []HistoryItem{{Type: "function_call", Role: "assistant"}, {Type: "message", Role: "assistant"}}, want: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateConfidence(tc.in); got != tc.want {
				t.Fatalf("want=%d got=%d", tc.want, got)
			}
		})
	}
}

func TestCalculateSeverity(t *testing.T) {
	cases := []struct {
		confidence int
		status     string
		issues     []string
		want       string
	}{
		{90, StatusFailed, nil, SeverityHigh},
		{30, StatusCompleted, nil, SeverityHigh},
		{90, StatusEscalated, nil, SeverityMedium},
		{55, StatusCompleted, nil, SeverityMedium},
		{90, StatusCompleted, []string{"x"}, SeverityMedium},
		{90, StatusCompleted, nil, SeverityLow},
	}
	for _, tc := range cases {
		if got := CalculateSeverity(tc.confidence, tc.status, tc.issues); got != tc.want {
			t.Fatalf("CalculateSeverity(%d,%s,%v): want=%s got=%s", tc.confidence, tc.status, tc.issues, tc.want, got)
		}
	}
}

func TestDetectIssues(t *testing.T) {
	if got := DetectIssues(history(1, 3), StatusFailed); !reflect.DeepEqual(got, []string{IssueFallback, IssueLowConfidence}) {
		t.Fatalf("failed call: got=%v", got)
	}
	if got := DetectIssues(history(3, 1), StatusEscalated); !reflect.DeepEqual(got, []string{IssueEscalation}) {
		t.Fatalf("escalated call: got=%v", got)
	}
	if got := DetectIssues(history(3, 0), StatusCompleted); len(got) != 0 {
		t.Fatalf("clean call: got=%v", got)
	}
}

func TestFillDerived(t *testing.T) {
	c := &Call{Status: StatusCompleted, History: []byte(`[{"type":"message","role":"assistant"},{"type":"message","role":"user"}]`)}
	c.FillDerived()
	if c.Confidence != 50 {
		t.Fatalf("confidence: want=50 got=%d", c.Confidence)
	}
	if !reflect.DeepEqual(c.IssueList(), []string{}) {
		t.Fatalf("issues: got=%v", c.IssueList())
	}
	if c.Severity != SeverityMedium {
		t.Fatalf("severity: want=Medium got=%s", c.Severity)
	}
	if c.Sentiment != SentimentNeutral {
		t.Fatalf("sentiment: got=%s", c.Sentiment)
	}
}
