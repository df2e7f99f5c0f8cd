package geometry

import (
	"math"
	"testing"

	"github.com/nathoo/worldnav/types"
)

func pt(x, y float64) types.Point { return types.Point{X: x, Y: y} }

func square() []types.Point {
	return []types.Point{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
}

func TestSegmentDistance(t *testing.T) {
	tests := []struct {
		name      string
		p, v, w   types.Point
		wantDist  float64
		wantPoint types.Point
	}{
		{"perpendicular", pt(5, 5), pt(0, 0), pt(10, 0), 5, pt(5, 0)},
		{"clamped to start", pt(-3, 4), pt(0, 0), pt(10, 0), 5, pt(0, 0)},
		{"clamped to end", pt(13, -4), pt(0, 0), pt(10, 0), 5, pt(10, 0)},
		{"degenerate segment", pt(3, 4), pt(0, 0), pt(0, 0), 5, pt(0, 0)},
		{"on segment", pt(2, 2), pt(0, 0), pt(4, 4), 0, pt(2, 2)},
	}
	for _, tt := range tests {
		d, cp := SegmentDistance(tt.p, tt.v, tt.w)
		if math.Abs(d-tt.wantDist) > 1e-9 {
			t.Errorf("%s: distance = %v, want %v", tt.name, d, tt.wantDist)
		}
		if math.Abs(cp.X-tt.wantPoint.X) > 1e-9 || math.Abs(cp.Y-tt.wantPoint.Y) > 1e-9 {
			t.Errorf("%s: closest = %v, want %v", tt.name, cp, tt.wantPoint)
		}
	}
}

func TestPointInPolygon(t *testing.T) {
	tests := []struct {
		p    types.Point
		want bool
	}{
		{pt(5, 5), true},
		{pt(20, 5), false},
		{pt(-1, 5), false},
		{pt(5, -1), false},
		{pt(5, 11), false},
		{pt(0.001, 9.999), true},
	}
	for _, tt := range tests {
		if got := PointInPolygon(tt.p, square()); got != tt.want {
			t.Errorf("PointInPolygon(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPointInPolygon_HalfOpenEdges(t *testing.T) {
	sq := square()
	// Bottom edge y=0 is excluded by the half-open interval; top edge y=10 is included.
	if PointInPolygon(pt(5, 0), sq) {
		t.Error("expected point on y=0 edge to be outside")
	}
	if !PointInPolygon(pt(5, 10), sq) {
		t.Error("expected point on y=10 edge to be inside")
	}
	// Vertical edges: the right edge counts as inside, the left edge does not.
	if !PointInPolygon(pt(10, 5), sq) {
		t.Error("expected point on right edge to be inside")
	}
	if PointInPolygon(pt(0, 5), sq) {
		t.Error("expected point on left edge to be outside")
	}
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape opening north (towards -y).
	u := []types.Point{pt(0, 0), pt(3, 0), pt(3, 7), pt(7, 7), pt(7, 0), pt(10, 0), pt(10, 10), pt(0, 10)}
	if PointInPolygon(pt(5, 3), u) {
		t.Error("expected notch to be outside")
	}
	if !PointInPolygon(pt(1, 3), u) {
		t.Error("expected left arm to be inside")
	}
	if !PointInPolygon(pt(5, 9), u) {
		t.Error("expected base to be inside")
	}
}

func TestPointInPolygon_Empty(t *testing.T) {
	if PointInPolygon(pt(0, 0), nil) {
		t.Error("expected empty polygon to contain nothing")
	}
}

func TestCompass_Cardinals(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   string
	}{
		{0, -1, "N"},
		{1, 0, "E"},
		{0, 1, "S"},
		{-1, 0, "W"},
		{1, -1, "NE"},
		{1, 1, "SE"},
		{-1, 1, "SW"},
		{-1, -1, "NW"},
		{0, 0, ""},
	}
	for _, tt := range tests {
		if got := Compass(tt.dx, tt.dy); got != tt.want {
			t.Errorf("Compass(%v, %v) = %q, want %q", tt.dx, tt.dy, got, tt.want)
		}
	}
}

func TestCompassFromAngle_Bins(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "N"},
		{11.2499, "N"},
		{11.25, "NNE"},
		{33.75, "NE"},
		{56.25, "ENE"},
		{78.75, "E"},
		{101.25, "ESE"},
		{123.75, "SE"},
		{146.25, "SSE"},
		{168.75, "S"},
		{191.25, "SSW"},
		{213.75, "SW"},
		{236.25, "WSW"},
		{258.75, "W"},
		{281.25, "WNW"},
		{303.75, "NW"},
		{326.25, "NNW"},
		{348.7499, "NNW"},
		{348.75, "N"},
		{359.999, "N"},
		{-90, "W"},
		{-11.25, "N"},
		{720, "N"},
	}
	for _, tt := range tests {
		if got := CompassFromAngle(tt.deg); got != tt.want {
			t.Errorf("CompassFromAngle(%v) = %q, want %q", tt.deg, got, tt.want)
		}
	}
}

func TestCompass_TotalCoverage(t *testing.T) {
	valid := map[string]bool{}
	for _, l := range compassLabels {
		valid[l] = true
	}
	for deg := 0.0; deg < 360; deg += 0.25 {
		rad := deg * math.Pi / 180
		got := Compass(math.Sin(rad), -math.Cos(rad))
		if !valid[got] {
			t.Fatalf("Compass at %v° = %q, not a compass label", deg, got)
		}
	}
}

func TestCompassBetween(t *testing.T) {
	if got := CompassBetween(pt(20, 5), pt(10, 5)); got != "W" {
		t.Errorf("expected W, got %q", got)
	}
	if got := CompassBetween(pt(3, 3), pt(3, 3)); got != "" {
		t.Errorf("expected empty label for coincident points, got %q", got)
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 0, 10},
		{0, 10, -10},
		{170, -170, -20},
		{-170, 170, 20},
		{180, 0, 180},
		{0, 180, 180},
		{359, 0, -1},
	}
	for _, tt := range tests {
		if got := AngleDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0}, {360, 0}, {-90, 270}, {450, 90}, {-360, 0},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOffset(t *testing.T) {
	p := Offset(pt(0, 0), 90)
	if math.Abs(p.X-1) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("Offset east = %v, want (1, 0)", p)
	}
	if got := CompassBetween(pt(0, 0), Offset(pt(0, 0), 200)); got != "SSW" {
		t.Errorf("expected SSW for 200°, got %q", got)
	}
}
