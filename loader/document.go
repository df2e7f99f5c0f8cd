package loader

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// rawEntry holds one document entry before the merge step. Geometry
// fields keep whatever the decoder produced.
type rawEntry struct {
	uid      string
	keys     []string
	content  string
	boundary any
	path     any
	location any
}

// decode turns a document into raw entries.
func decode(source string, data []byte, format Format) ([]rawEntry, error) {
	var doc map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &ImportError{Path: source, Reason: "malformed JSON document", Err: err}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &ImportError{Path: source, Reason: "malformed YAML document", Err: err}
		}
	case FormatLua:
		return runLua([]luaChunk{{name: source, code: string(data)}})
	default:
		return nil, &ImportError{Path: source, Reason: fmt.Sprintf("unsupported format %q", format)}
	}

	entries, ok := asMap(doc["entries"])
	if !ok {
		return nil, &ImportError{Path: source, Reason: "invalid format: 'entries' key not found"}
	}

	raws := make([]rawEntry, 0, len(entries))
	for uid, v := range entries {
		m, ok := asMap(v)
		if !ok {
			// Not an entry object; it has no name to resolve.
			raws = append(raws, rawEntry{uid: uid})
			continue
		}
		raws = append(raws, entryFromMap(uid, m))
	}
	return raws, nil
}

func entryFromMap(uid string, m map[string]any) rawEntry {
	raw := rawEntry{
		uid:      uid,
		boundary: m["boundary"],
		path:     m["path"],
		location: m["location"],
	}
	if s, ok := m["content"].(string); ok {
		raw.content = s
	}
	switch keys := m["key"].(type) {
	case []any:
		for _, k := range keys {
			if s, ok := k.(string); ok {
				raw.keys = append(raw.keys, s)
			}
		}
	case string:
		raw.keys = []string{keys}
	}
	return raw
}

// asMap accepts both map shapes a YAML decoder can produce.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
