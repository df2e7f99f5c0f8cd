// Package resolve turns a map coordinate into a location analysis: the
// regions containing it and the nearby points of interest, ranked by
// distance and rendered as a narrative line.
package resolve

import (
	"math"
	"sort"

	"github.com/nathoo/worldnav/engine/geometry"
	"github.com/nathoo/worldnav/types"
)

// NoWorldMessage is returned by Describe when no world is loaded.
const NoWorldMessage = "[WorldNavigator: No map data has been loaded.]"

// Scale converts plane units to display kilometres and bounds the search.
type Scale struct {
	KMPerUnit     float64
	MaxDistanceKM float64
}

// DefaultScale returns the stock map scale: 3.485 km per unit, 250 km reach.
func DefaultScale() Scale {
	return Scale{KMPerUnit: 3.485, MaxDistanceKM: 250}
}

// SearchRadius is the inclusive search radius in plane units.
func (s Scale) SearchRadius() float64 {
	if s.KMPerUnit <= 0 {
		return 0
	}
	return math.Floor(s.MaxDistanceKM / s.KMPerUnit)
}

// Kind tags which geometry produced a candidate.
type Kind string

const (
	KindSpan  Kind = "span"
	KindPath  Kind = "path"
	KindPoint Kind = "point"
)

// Candidate is one entry's nearest approach to the query point.
type Candidate struct {
	Name     string
	Distance float64 // plane units
	Kind     Kind
	Closest  types.Point

	// Span only: bearing interval of the boundary within the search radius.
	MinAngle float64
	MaxAngle float64

	// Path only: the polyline and the index of the nearest segment.
	Path    []types.Point
	Segment int
}

// Analysis is the structured result of resolving one point.
type Analysis struct {
	Player     types.Point
	Containing []string
	Nearby     []Candidate // ascending distance, one per name
}

// Resolver answers location queries against a world. It never mutates the
// world and is safe for concurrent use.
type Resolver struct {
	World *types.World
	Scale Scale
}

// New creates a resolver. A nil world is allowed and yields the sentinel.
func New(world *types.World, scale Scale) *Resolver {
	return &Resolver{World: world, Scale: scale}
}

// Describe returns the narrative for p, or NoWorldMessage when no world
// is loaded.
func (r *Resolver) Describe(p types.Point) string {
	if r == nil || r.World == nil {
		return NoWorldMessage
	}
	return Render(r.Analyze(p), r.Scale)
}

// Analyze computes containing regions and ranked nearby candidates for p.
func (r *Resolver) Analyze(p types.Point) Analysis {
	a := Analysis{Player: p}
	if r.World == nil {
		return a
	}
	radius := r.Scale.SearchRadius()

	var candidates []Candidate
	for _, e := range r.World.Entries {
		if e.Name == "" {
			continue
		}
		if len(e.Boundary) >= 3 {
			if geometry.PointInPolygon(p, e.Boundary) {
				a.Containing = append(a.Containing, e.Name)
			} else if c, ok := spanCandidate(p, e, radius); ok {
				candidates = append(candidates, c)
			}
		}
		if len(e.Path) >= 2 {
			if c, ok := pathCandidate(p, e, radius); ok {
				candidates = append(candidates, c)
			}
		}
		if e.Location != nil {
			if d := geometry.Distance(p, *e.Location); d <= radius {
				candidates = append(candidates, Candidate{
					Name: e.Name, Distance: d, Kind: KindPoint, Closest: *e.Location,
				})
			}
		}
	}

	a.Nearby = rank(candidates)
	return a
}

// spanCandidate measures an outside boundary. The angle interval is taken
// relative to the bearing of the closest boundary point, over the vertices
// that are themselves within the radius.
func spanCandidate(p types.Point, e types.Entry, radius float64) (Candidate, bool) {
	n := len(e.Boundary)
	minDist := math.Inf(1)
	var closest types.Point
	for i := 0; i < n; i++ {
		d, proj := geometry.SegmentDistance(p, e.Boundary[i], e.Boundary[(i+1)%n])
		if d < minDist {
			minDist = d
			closest = proj
		}
	}
	if minDist > radius {
		return Candidate{}, false
	}

	base := geometry.BearingTo(p, closest)
	minDiff, maxDiff := 0.0, 0.0
	for _, v := range e.Boundary {
		if geometry.Distance(p, v) > radius {
			continue
		}
		diff := geometry.AngleDiff(geometry.BearingTo(p, v), base)
		if diff < minDiff {
			minDiff = diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
	}

	return Candidate{
		Name:     e.Name,
		Distance: minDist,
		Kind:     KindSpan,
		Closest:  closest,
		MinAngle: base + minDiff,
		MaxAngle: base + maxDiff,
	}, true
}

// pathCandidate finds the nearest segment of a polyline. Ties keep the
// first segment.
func pathCandidate(p types.Point, e types.Entry, radius float64) (Candidate, bool) {
	best := -1
	bestDist := math.Inf(1)
	var bestPoint types.Point
	for i := 0; i < len(e.Path)-1; i++ {
		d, proj := geometry.SegmentDistance(p, e.Path[i], e.Path[i+1])
		if d < bestDist {
			best, bestDist, bestPoint = i, d, proj
		}
	}
	if best < 0 || bestDist > radius {
		return Candidate{}, false
	}
	return Candidate{
		Name:     e.Name,
		Distance: bestDist,
		Kind:     KindPath,
		Closest:  bestPoint,
		Path:     e.Path,
		Segment:  best,
	}, true
}

// rank sorts candidates by distance (stable) and keeps the first one per name.
func rank(candidates []Candidate) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	seen := make(map[string]bool, len(candidates))
	var out []Candidate
	for _, c := range candidates {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}
