package calls

import "math"

const (
	IssueFallback      = "FALLBA"
	IssueEscalation    = "ESCALA"
	IssueLowConfidence = "LOW CONFID"
)

// CalculateConfidence is the share of history items that are assistant messages, 0..100.
func CalculateConfidence(history []HistoryItem) int {
	if len(history) == 0 {
		return 0
	}
	assistant := 0
	for _, item := range history {
		if item.Type == "message" && item.Role == "assistant" {
			assistant++
		}
	}
	pct := int(math.Round(float64(assistant) / float64(len(history)) * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func CalculateSeverity(confidence int, status string, issues []string) string {
	if status == StatusFailed || confidence < 40 {
		return SeverityHigh
	}
	if status == StatusEscalated || confidence < 60 || len(issues) > 0 {
		return SeverityMedium
	}
	return SeverityLow
}

func DetectIssues(history []HistoryItem, status string) []string {
	issues := []string{}
	switch status {
	case StatusFailed:
		issues = append(issues, IssueFallback)
	case StatusEscalated:
		issues = append(issues, IssueEscalation)
	}
	if CalculateConfidence(history) < 50 {
		issues = append(issues, IssueLowConfidence)
	}
	return issues
}

// Sentiment scoring is not implemented yet; every call is neutral.
func CalculateSentiment(history []HistoryItem) string {
	return SentimentNeutral
}

// FillDerived computes confidence, issues, severity and sentiment for fields the caller left empty.
func (c *Call) FillDerived() {
	history := c.HistoryItems()
	if c.Confidence == 0 && len(history) > 0 {
		c.Confidence = CalculateConfidence(history)
	}
	if len(c.Issues) == 0 {
		c.SetIssues(DetectIssues(history, c.Status))
	}
	if c.Severity == "" {
		c.Severity = CalculateSeverity(c.Confidence, c.Status, c.IssueList())
	}
	if c.Sentiment == "" {
		c.Sentiment = CalculateSentiment(history)
	}
}
