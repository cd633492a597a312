package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// ExtractJSON pulls a JSON object out of model output that may be wrapped in a
// markdown fence or surrounded by prose.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		text = strings.TrimSpace(m[1])
	}
	if !strings.HasPrefix(text, "{") {
		first := strings.Index(text, "{")
		last := strings.LastIndex(text, "}")
		if first != -1 && last > first {
			text = text[first : last+1]
		}
	}
	return text
}

func decodeModelJSON(raw string, out any) error {
	if err := json.Unmarshal([]byte(ExtractJSON(raw)), out); err != nil {
		return fmt.Errorf("model returned invalid JSON: %w", err)
	}
	return nil
}

// remarshal converts a generic JSON object into a typed value.
func remarshal(in map[string]any, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("model JSON has unexpected shape: %w", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
