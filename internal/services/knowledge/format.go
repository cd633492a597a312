package knowledge

import (
	"fmt"
	"strings"

	"github.com/yungbote/voicewatch-backend/internal/domain/knowledge"
)

// FormatResults renders search hits as numbered passages for a language model prompt.
func FormatResults(results []knowledge.SearchResult) string {
	if len(results) == 0 {
		return NoResultsMessage
	}
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] Source: %s", i+1, sourceLabel(r.Metadata))
		fmt.Fprintf(&b, " (relevance %.2f)\n", r.Score)
		b.WriteString(strings.TrimSpace(r.Content))
	}
	return b.String()
}

func sourceLabel(m knowledge.ChunkMetadata) string {
	label := m.Source
	if t := strings.TrimSpace(m.Title); t != "" {
		label = t + " - " + m.Source
	}
	if m.PageNumber != nil {
		label = fmt.Sprintf("%s, page %d", label, *m.PageNumber)
	}
	return label
}
