package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/worldnav/types"
)

// compile turns raw entries into typed entries. Entries without a name
// are skipped; unreadable geometry becomes absent geometry. Both cases are
// reported as warnings.
func compile(source string, raws []rawEntry, log *zap.Logger) (*types.World, []string) {
	sortByUID(raws)

	world := &types.World{Source: source, Entries: make([]types.Entry, 0, len(raws))}
	var warnings []string

	for _, raw := range raws {
		name, aliases := resolveName(raw.keys)
		if name == "" {
			log.Debug("skipping unnamed entry", zap.String("uid", raw.uid))
			warnings = append(warnings, fmt.Sprintf("entry %s has no name; skipped", raw.uid))
			continue
		}

		entry := types.Entry{ID: raw.uid, Name: name, Aliases: aliases}
		legacy := tokenize(raw.content)

		warn := func(field string, err error) {
			log.Warn("unreadable geometry",
				zap.String("entry", name),
				zap.String("field", field),
				zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("entry %q: %s ignored: %v", name, strings.ToLower(field), err))
		}

		if v, ok := pickGeometry(raw.boundary, legacy, legacyBoundary, warn, toPoints); ok {
			entry.Boundary = v
		}
		if v, ok := pickGeometry(raw.path, legacy, legacyPath, warn, toPoints); ok {
			entry.Path = v
		}
		if v, ok := pickGeometry(raw.location, legacy, legacyLocation, warn, toPoint); ok {
			entry.Location = v
		}

		world.Entries = append(world.Entries, entry)
	}

	return world, warnings
}

// pickGeometry is the precedence rule: a readable structured field wins
// over the legacy content field of the same meaning. An unreadable source
// is warned about and treated as absent, so the legacy field still applies
// when the structured one cannot be read.
func pickGeometry[T any](structured any, legacy map[string]string, key string,
	warn func(string, error), convert func(any) (T, error)) (T, bool) {
	var zero T
	if structured != nil {
		v, err := convert(structured)
		if err == nil {
			return v, true
		}
		warn(key, err)
	}
	text, ok := legacy[key]
	if !ok {
		return zero, false
	}
	raw, err := decodeLegacyValue(text)
	if err != nil {
		warn(key, err)
		return zero, false
	}
	v, err := convert(raw)
	if err != nil {
		warn(key, err)
		return zero, false
	}
	return v, true
}

// resolveName returns the first non-empty alias as the name and the rest
// as aliases.
func resolveName(keys []string) (string, []string) {
	var name string
	var aliases []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if name == "" {
			name = k
			continue
		}
		aliases = append(aliases, k)
	}
	return name, aliases
}

// sortByUID orders entries numerically when every uid is a number and
// lexically otherwise.
func sortByUID(raws []rawEntry) {
	numeric := true
	nums := make(map[string]int64, len(raws))
	for _, r := range raws {
		n, err := strconv.ParseInt(r.uid, 10, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[r.uid] = n
	}
	sort.SliceStable(raws, func(i, j int) bool {
		if numeric {
			return nums[raws[i].uid] < nums[raws[j].uid]
		}
		return raws[i].uid < raws[j].uid
	})
}

// toPoints converts a decoded list of pairs into points. nil means absent.
func toPoints(v any) ([]types.Point, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of points, got %T", v)
	}
	pts := make([]types.Point, 0, len(list))
	for i, item := range list {
		p, err := toPoint(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		if p == nil {
			return nil, fmt.Errorf("point %d is empty", i)
		}
		pts = append(pts, *p)
	}
	return pts, nil
}

// toPoint converts a decoded [x, y] pair. nil means absent.
func toPoint(v any) (*types.Point, error) {
	if v == nil {
		return nil, nil
	}
	pair, ok := v.([]any)
	if !ok || len(pair) < 2 {
		return nil, fmt.Errorf("expected an [x, y] pair, got %v", v)
	}
	x, okX := toFloat(pair[0])
	y, okY := toFloat(pair[1])
	if !okX || !okY {
		return nil, fmt.Errorf("non-numeric coordinate in %v", v)
	}
	return &types.Point{X: x, Y: y}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
