package loader

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/nathoo/worldnav/types"
)

func TestTokenize(t *testing.T) {
	content := "Intro text.\n" +
		"[Boundary: [(0,0), (1,0), (1,1)]]\r\n" +
		"  [Indented: ignored]\n" +
		"[Path:(0,0),(2,2)]\n" +
		"[NoColon]\n" +
		"[Location: (1, 2)]\n" +
		"[Location: (3, 4)]"

	got := tokenize(content)
	want := map[string]string{
		"Boundary": "[(0,0), (1,0), (1,1)]",
		"Path":     "(0,0),(2,2)",
		"Location": "(3, 4)",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenize_ShortLines(t *testing.T) {
	got := tokenize("[a]:\n[:]")
	if v, ok := got["a]"]; !ok || v != "" {
		t.Errorf("expected empty value for key \"a]\", got %v", got)
	}
	if v, ok := got[""]; !ok || v != "" {
		t.Errorf("expected empty key and value, got %v", got)
	}
}

func TestDecodeLegacyValue(t *testing.T) {
	v, err := decodeLegacyValue("[(0,0), (10, 0), (10,10)]")
	if err != nil {
		t.Fatalf("decodeLegacyValue failed: %v", err)
	}
	pts, err := toPoints(v)
	if err != nil {
		t.Fatalf("toPoints failed: %v", err)
	}
	want := []types.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	if _, err := decodeLegacyValue("(0,0), (1,1"); err == nil {
		t.Error("expected error for unbalanced tuple")
	}
}

func TestCompile_StructuredWins(t *testing.T) {
	raws := []rawEntry{{
		uid:      "0",
		keys:     []string{"Fort"},
		content:  "[Boundary: [(100,100), (200,100), (200,200)]]\n[Location: (7, 7)]",
		boundary: []any{[]any{0.0, 0.0}, []any{10.0, 0.0}, []any{10.0, 10.0}},
	}}

	w, warnings := compile("test", raws, zap.NewNop())
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	e := w.Entries[0]
	if e.Boundary[0] != (types.Point{X: 0, Y: 0}) {
		t.Errorf("expected structured boundary, got %v", e.Boundary)
	}
	if e.Location == nil || *e.Location != (types.Point{X: 7, Y: 7}) {
		t.Errorf("expected legacy location to fill the gap, got %v", e.Location)
	}
}

func TestCompile_LegacyFailureIsAbsent(t *testing.T) {
	raws := []rawEntry{
		{uid: "0", keys: []string{"Broken"}, content: "[Boundary: [(0,0), (1,0]\n[Location: (3, 3)]"},
		{uid: "1", keys: []string{"Fine"}, content: "[Location: (5, 5)]"},
	}

	w, warnings := compile("test", raws, zap.NewNop())
	if len(w.Entries) != 2 {
		t.Fatalf("expected both entries kept, got %d", len(w.Entries))
	}
	broken := w.Entries[0]
	if broken.Boundary != nil {
		t.Errorf("expected no boundary, got %v", broken.Boundary)
	}
	if broken.Location == nil {
		t.Error("expected the readable location to survive")
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "boundary ignored") {
		t.Errorf("unexpected warnings %v", warnings)
	}
}

func TestCompile_MalformedStructuredField(t *testing.T) {
	raws := []rawEntry{{
		uid:      "0",
		keys:     []string{"Odd"},
		path:     "north",
		location: []any{"x", 1.0},
	}}

	w, warnings := compile("test", raws, zap.NewNop())
	if w.Entries[0].Path != nil || w.Entries[0].Location != nil {
		t.Errorf("expected malformed geometry dropped, got %+v", w.Entries[0])
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
}

func TestCompile_MalformedStructuredFallsBackToLegacy(t *testing.T) {
	raws := []rawEntry{{
		uid:      "0",
		keys:     []string{"Well"},
		content:  "[Location: (3, 4)]\n[Path: [(0,0), (2,0)]]",
		location: "north",
		path:     []any{[]any{1.0, 1.0}, []any{5.0, 1.0}},
	}}

	w, warnings := compile("test", raws, zap.NewNop())
	e := w.Entries[0]
	if e.Location == nil || *e.Location != (types.Point{X: 3, Y: 4}) {
		t.Errorf("expected legacy location (3, 4), got %v", e.Location)
	}
	want := []types.Point{{X: 1, Y: 1}, {X: 5, Y: 1}}
	if diff := cmp.Diff(want, e.Path); diff != "" {
		t.Errorf("expected readable structured path to win (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "location ignored") {
		t.Errorf("expected one location warning, got %v", warnings)
	}
}

func TestCompile_SkipsUnnamed(t *testing.T) {
	raws := []rawEntry{
		{uid: "0", keys: nil, content: "[Location: (1, 1)]"},
		{uid: "1", keys: []string{"", "  "}},
		{uid: "2", keys: []string{"  ", " Keep ", "Alias"}},
	}

	w, warnings := compile("test", raws, zap.NewNop())
	if len(w.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(w.Entries))
	}
	if w.Entries[0].Name != "Keep" {
		t.Errorf("Name = %q, want Keep", w.Entries[0].Name)
	}
	if diff := cmp.Diff([]string{"Alias"}, w.Entries[0].Aliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
}

func TestSortByUID(t *testing.T) {
	tests := []struct {
		name string
		uids []string
		want []string
	}{
		{"numeric", []string{"10", "2", "1"}, []string{"1", "2", "10"}},
		{"lexical", []string{"b", "10", "a", "2"}, []string{"10", "2", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws := make([]rawEntry, len(tt.uids))
			for i, u := range tt.uids {
				raws[i] = rawEntry{uid: u}
			}
			sortByUID(raws)
			got := make([]string, len(raws))
			for i, r := range raws {
				got[i] = r.uid
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToPoints(t *testing.T) {
	if pts, err := toPoints(nil); err != nil || pts != nil {
		t.Errorf("expected nil for absent value, got %v, %v", pts, err)
	}
	if _, err := toPoints([]any{[]any{1.0}}); err == nil {
		t.Error("expected error for a one-element pair")
	}
	if _, err := toPoints([]any{nil}); err == nil {
		t.Error("expected error for an empty point")
	}
	pts, err := toPoints([]any{[]any{1, int64(2)}, []any{3.5, float32(4)}})
	if err != nil {
		t.Fatalf("toPoints failed: %v", err)
	}
	want := []types.Point{{X: 1, Y: 2}, {X: 3.5, Y: 4}}
	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
}
