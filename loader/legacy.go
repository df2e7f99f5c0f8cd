package loader

import (
	"encoding/json"
	"strings"
)

// Legacy field keys carried in entry content.
const (
	legacyBoundary = "Boundary"
	legacyPath     = "Path"
	legacyLocation = "Location"
)

// tokenize scans free text for "[Key: value]" lines and returns the
// fields it found. A later line overrides an earlier one with the same key.
func tokenize(content string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "[") || !strings.Contains(line, ":") || !strings.Contains(line, "]") {
			continue
		}
		colon := strings.Index(line, ":")
		key := strings.TrimSpace(line[1:colon])
		value := ""
		if end := len(line) - 1; colon+1 < end {
			value = strings.TrimSpace(line[colon+1 : end])
		}
		fields[key] = value
	}
	return fields
}

// decodeLegacyValue parses a legacy coordinate value such as
// "[(0,0), (10,0), (10,10)]". Tuples are rewritten as arrays first.
func decodeLegacyValue(text string) (any, error) {
	normalized := strings.NewReplacer("(", "[", ")", "]").Replace(text)
	var v any
	if err := json.Unmarshal([]byte(normalized), &v); err != nil {
		return nil, err
	}
	return v, nil
}
