package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Lines accepts either a JSON string or an array of strings.
type Lines []string

func (l *Lines) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var arr []string
		if err := json.Unmarshal(b, &arr); err != nil {
			return fmt.Errorf("observations: %w", err)
		}
		*l = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("observations: %w", err)
	}
	*l = Lines{s}
	return nil
}

func (l Lines) Empty() bool {
	for _, s := range l {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}

func (l Lines) Join() string { return strings.Join(l, "\n") }
