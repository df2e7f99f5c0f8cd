package loader

import (
	"fmt"
	"math"
	"strings"

	"github.com/nathoo/worldnav/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Validate checks a compiled world. Non-finite coordinates are errors.
// Geometry the resolver would ignore and duplicate names are warnings.
// It returns nil when there is nothing to report.
func Validate(w *types.World) *ValidationError {
	ve := &ValidationError{}
	if w == nil {
		return nil
	}

	firstByName := map[string]string{}
	for _, e := range w.Entries {
		if bad := nonFinite(e); bad != "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("entry %q has a non-finite %s coordinate", e.Name, bad))
		}

		if n := len(e.Boundary); n > 0 && n < 3 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"entry %q boundary has %d point(s), needs at least 3; ignored", e.Name, n))
		}
		if n := len(e.Path); n == 1 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"entry %q path has 1 point, needs at least 2; ignored", e.Name))
		}
		if len(e.Boundary) < 3 && len(e.Path) < 2 && e.Location == nil {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("entry %q has no usable geometry", e.Name))
		}

		if first, ok := firstByName[e.Name]; ok {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"entry %s repeats the name %q of entry %s; only the closer one is reported", e.ID, e.Name, first))
		} else {
			firstByName[e.Name] = e.ID
		}
	}

	if len(ve.Errors) == 0 && len(ve.Warnings) == 0 {
		return nil
	}
	return ve
}

// nonFinite names the first geometry kind holding NaN or Inf, or "".
func nonFinite(e types.Entry) string {
	for _, p := range e.Boundary {
		if !finite(p) {
			return "boundary"
		}
	}
	for _, p := range e.Path {
		if !finite(p) {
			return "path"
		}
	}
	if e.Location != nil && !finite(*e.Location) {
		return "location"
	}
	return ""
}

func finite(p types.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// WorldStats counts usable geometry in a world.
type WorldStats struct {
	Entries   int
	Regions   int
	Paths     int
	Landmarks int
}

// Stats counts the geometry the resolver will evaluate.
func Stats(w *types.World) WorldStats {
	var st WorldStats
	if w == nil {
		return st
	}
	st.Entries = len(w.Entries)
	for _, e := range w.Entries {
		if len(e.Boundary) >= 3 {
			st.Regions++
		}
		if len(e.Path) >= 2 {
			st.Paths++
		}
		if e.Location != nil {
			st.Landmarks++
		}
	}
	return st
}
