package overlay

import (
	"math"
	"strings"
	"testing"

	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

var frameRect = geometry.Rect{Left: 100, Top: 80, Width: 190, Height: 130}

func TestHighlightDeterministic(t *testing.T) {
	for _, kind := range []sheet.HighlightKind{sheet.HighlightRectangle, sheet.HighlightCircle, sheet.HighlightScribble} {
		a := Highlight(frameRect, kind, 5)
		b := Highlight(frameRect, kind, 5)
		if len(a.Points) != len(b.Points) {
			t.Fatalf("%s: path lengths differ", kind)
		}
		for i := range a.Points {
			if a.Points[i] != b.Points[i] {
				t.Fatalf("%s: vertex %d differs between renders: %v vs %v", kind, i, a.Points[i], b.Points[i])
			}
		}
	}
}

func TestHighlightKindsDistinct(t *testing.T) {
	r := Highlight(frameRect, sheet.HighlightRectangle, 1)
	c := Highlight(frameRect, sheet.HighlightCircle, 1)
	if len(r.Points) == len(c.Points) {
		t.Error("rectangle and circle paths are not visually distinct shapes")
	}
}

func TestHighlightCoversFrame(t *testing.T) {
	// The path must cover the frame rect plus the outward margin, within
	// jitter tolerance.
	for _, kind := range []sheet.HighlightKind{sheet.HighlightRectangle, sheet.HighlightScribble} {
		p := Highlight(frameRect, kind, 3)
		b := p.Bounds()
		slack := wobble + 0.01
		if b.Left > frameRect.Left-Margin+slack || b.Top > frameRect.Top-Margin+slack {
			t.Errorf("%s: bounds %+v do not reach the outset frame %+v", kind, b, frameRect.Outset(Margin))
		}
		if b.Right() < frameRect.Right()+Margin-slack || b.Bottom() < frameRect.Bottom()+Margin-slack {
			t.Errorf("%s: bounds %+v fall short of the outset frame", kind, b)
		}
		if !p.Closed {
			t.Errorf("%s: highlight path is not closed", kind)
		}
	}
}

func TestCrossStrokes(t *testing.T) {
	c := Cross(frameRect, 2)
	box := frameRect.Outset(Margin)
	cx := box.Left + box.Width/2
	cy := box.Top + box.Height/2
	for i, stroke := range c {
		if stroke.Closed {
			t.Errorf("cross stroke %d is closed", i)
		}
		b := stroke.Bounds()
		if !(b.Left <= cx && b.Right() >= cx && b.Top <= cy && b.Bottom() >= cy) {
			t.Errorf("cross stroke %d does not pass through the frame center", i)
		}
	}
	// The two strokes run in opposite diagonal directions.
	first, second := c[0].Points, c[1].Points
	if math.Signbit(first[len(first)-1].X-first[0].X) == math.Signbit(second[len(second)-1].X-second[0].X) &&
		math.Signbit(first[len(first)-1].Y-first[0].Y) == math.Signbit(second[len(second)-1].Y-second[0].Y) {
		t.Error("cross strokes do not cross")
	}
}

func TestBuildLayersSeparate(t *testing.T) {
	layout := geometry.For(3, 1)
	frames := []sheet.Frame{
		{ID: "a", Highlights: sheet.Highlights{Rectangle: true, Cross: true}},
		{ID: "b"},
		{ID: "c", Highlights: sheet.Highlights{Circle: true, Scribble: true}},
	}
	s := Build(layout, frames)
	if len(s.Highlights) != 3 {
		t.Errorf("highlight layer has %d paths, want 3", len(s.Highlights))
	}
	if len(s.Crosses) != 2 {
		t.Errorf("cross layer has %d strokes, want 2", len(s.Crosses))
	}
}

func TestSVGSerialization(t *testing.T) {
	p := Path{Points: []Point{{0, 0}, {10, 0}, {10, 10}}, Closed: true}
	d := p.SVG()
	if !strings.HasPrefix(d, "M 0.00 0.00") || !strings.HasSuffix(d, "Z") {
		t.Errorf("SVG d = %q", d)
	}
	if got := (Path{}).SVG(); got != "" {
		t.Errorf("empty path SVG = %q", got)
	}
}
