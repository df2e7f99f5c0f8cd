package resolve

import (
	"fmt"
	"math"
	"strings"

	"github.com/nathoo/worldnav/engine/geometry"
	"github.com/nathoo/worldnav/types"
)

// narrowSpan is the width in degrees below which a span renders as a
// single direction.
const narrowSpan = 5

// Render formats an analysis as the LocationAnalysis line.
func Render(a Analysis, scale Scale) string {
	containing := "None"
	if len(a.Containing) > 0 {
		containing = strings.Join(a.Containing, ", ")
	}

	nearby := "None"
	if len(a.Nearby) > 0 {
		items := make([]string, 0, len(a.Nearby))
		for _, c := range a.Nearby {
			items = append(items, describeCandidate(c, a.Player, scale))
		}
		nearby = strings.Join(items, ", ")
	}

	return fmt.Sprintf("[LocationAnalysis: PlayerLocation={(%d, %d)}, ContainingRegions={%s}, NearbyPOIs={%s}]",
		roundHalfUp(a.Player.X), roundHalfUp(a.Player.Y), containing, nearby)
}

// describeCandidate renders one nearby item:
// "Name (~12.3 km NE, <qualifier>, ClosestPoint:(x,y))".
func describeCandidate(c Candidate, player types.Point, scale Scale) string {
	km := c.Distance * scale.KMPerUnit
	dir := geometry.CompassBetween(player, c.Closest)
	closest := fmt.Sprintf(", ClosestPoint:(%d,%d)", roundHalfUp(c.Closest.X), roundHalfUp(c.Closest.Y))

	var qualifier string
	switch c.Kind {
	case KindSpan:
		qualifier = ", " + spanText(c, player, dir)
	case KindPath:
		qualifier = ", " + pathText(c)
	}

	return fmt.Sprintf("%s (~%.1f km %s%s%s)", c.Name, km, dir, qualifier, closest)
}

// spanText describes the bearing interval a region boundary occupies.
func spanText(c Candidate, player types.Point, dirToClosest string) string {
	start := roundDegree(c.MinAngle)
	end := roundDegree(c.MaxAngle)

	width := ((end-start)%360 + 360) % 360
	if width < narrowSpan {
		return "in the " + dirToClosest
	}

	dir1 := geometry.CompassBetween(player, geometry.Offset(player, c.MinAngle))
	dir2 := geometry.CompassBetween(player, geometry.Offset(player, c.MaxAngle))
	if width > 180 {
		start, end = end, start
		dir1, dir2 = dir2, dir1
	}

	degrees := fmt.Sprintf(" [%d°-%d°]", start, end)
	if dir1 != dir2 {
		return "spanning from " + dir1 + " to " + dir2 + degrees
	}
	return "entirely in the " + dir1 + degrees
}

// pathText describes the course of a path through its nearest segment.
func pathText(c Candidate) string {
	path, idx := c.Path, c.Segment

	var before, after string
	if idx > 0 {
		before = geometry.Compass(path[idx].X-path[idx-1].X, path[idx].Y-path[idx-1].Y)
	}
	if idx < len(path)-2 {
		after = geometry.Compass(path[idx+2].X-path[idx+1].X, path[idx+2].Y-path[idx+1].Y)
	}

	switch {
	case before != "" && after != "":
		if before != after {
			return "curving from " + before + " to " + after
		}
		return "running straight " + before
	case before != "":
		return "ending from the " + before
	case after != "":
		return "heading " + after
	default:
		seg := geometry.Compass(path[idx+1].X-path[idx].X, path[idx+1].Y-path[idx].Y)
		return "running " + seg
	}
}

// roundDegree rounds an angle to whole degrees in [0, 360).
func roundDegree(deg float64) int {
	return roundHalfUp(geometry.Normalize(deg)) % 360
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
