// Package geometry implements the plane geometry used by the resolver:
// segment projection, polygon containment and compass bucketing.
// Angles are in degrees with 0° at North, increasing clockwise. The map's
// y axis grows downward, so North is -y.
package geometry

import (
	"math"

	"github.com/nathoo/worldnav/types"
)

// Compass labels in clockwise order starting at North.
var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b types.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// SegmentDistance returns the distance from p to the closest point on the
// segment [v, w], and that closest point. A zero-length segment degrades to
// the distance to v.
func SegmentDistance(p, v, w types.Point) (float64, types.Point) {
	dx, dy := w.X-v.X, w.Y-v.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Distance(p, v), v
	}
	t := ((p.X-v.X)*dx + (p.Y-v.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	proj := types.Point{X: v.X + t*dx, Y: v.Y + t*dy}
	return Distance(p, proj), proj
}

// PointInPolygon reports whether p lies inside polygon using the even-odd
// rule. The polygon is implicitly closed. An edge counts as crossed when
// p.Y is in the half-open interval (min(y1,y2), max(y1,y2)] and p lies on
// or left of the edge's x-intercept; horizontal edges never count.
func PointInPolygon(p types.Point, polygon []types.Point) bool {
	n := len(polygon)
	if n == 0 {
		return false
	}
	inside := false
	p1 := polygon[0]
	for i := 1; i <= n; i++ {
		p2 := polygon[i%n]
		if p.Y > math.Min(p1.Y, p2.Y) && p.Y <= math.Max(p1.Y, p2.Y) && p.X <= math.Max(p1.X, p2.X) {
			if p1.Y != p2.Y {
				xinters := (p.Y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
				if p1.X == p2.X || p.X <= xinters {
					inside = !inside
				}
			}
		}
		p1 = p2
	}
	return inside
}

// Bearing returns the bearing of the vector (dx, dy) in degrees within
// (-180, 180]. It does not normalize.
func Bearing(dx, dy float64) float64 {
	return math.Atan2(dx, -dy) * 180 / math.Pi
}

// BearingTo returns the bearing from one point to another.
func BearingTo(from, to types.Point) float64 {
	return Bearing(to.X-from.X, to.Y-from.Y)
}

// Normalize maps any angle into [0, 360).
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

// AngleDiff returns a-b wrapped into (-180, 180].
func AngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d <= -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return d
}

// Offset returns the point one unit away from origin along bearing deg.
func Offset(origin types.Point, deg float64) types.Point {
	rad := deg * math.Pi / 180
	return types.Point{X: origin.X + math.Sin(rad), Y: origin.Y - math.Cos(rad)}
}

// CompassFromAngle buckets an angle into one of the 16 compass labels.
// Bins are 22.5° wide, closed on the low end, and N wraps across 0°.
func CompassFromAngle(deg float64) string {
	a := Normalize(deg)
	if a >= 348.75 {
		return "N"
	}
	idx := int(math.Floor((a + 11.25) / 22.5))
	if idx >= len(compassLabels) {
		idx = 0
	}
	return compassLabels[idx]
}

// Compass returns the compass label of the vector (dx, dy), or "" for the
// zero vector.
func Compass(dx, dy float64) string {
	if dx == 0 && dy == 0 {
		return ""
	}
	return CompassFromAngle(Bearing(dx, dy))
}

// CompassBetween returns the compass label from one point to another, or
// "" when they coincide.
func CompassBetween(from, to types.Point) string {
	return Compass(to.X-from.X, to.Y-from.Y)
}
