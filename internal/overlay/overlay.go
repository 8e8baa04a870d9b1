// Package overlay turns committed highlight and cross-mark state into
// hand-drawn-looking vector paths positioned over the frame grid.
//
// Paths are pure functions of the frame rectangle and the 1-based frame
// number: every control point runs through the jitter generator keyed by
// the frame number, so re-rendering unchanged state never re-randomizes.
// The overlay is paint-only; surfaces must render it click-through.
package overlay

import (
	"fmt"
	"math"
	"strings"

	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/jitter"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// Margin is how far, in unscaled pixels, a highlight path extends beyond
// the frame rectangle it decorates.
const Margin = 6.0

// wobble is the jitter amplitude of path control points in unscaled pixels.
const wobble = 3.5

// Point is a path vertex in canvas pixels.
type Point struct {
	X float64
	Y float64
}

// Path is an ordered list of vertices. Closed paths repeat their start
// implicitly via the Closed flag rather than duplicating the vertex.
type Path struct {
	Points []Point
	Closed bool
}

// SVG serializes the path as an SVG "d" attribute with line segments.
func (p Path) SVG() string {
	if len(p.Points) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M %.2f %.2f", p.Points[0].X, p.Points[0].Y)
	for _, pt := range p.Points[1:] {
		fmt.Fprintf(&b, " L %.2f %.2f", pt.X, pt.Y)
	}
	if p.Closed {
		b.WriteString(" Z")
	}
	return b.String()
}

// Bounds returns the axis-aligned bounding rectangle of the path.
func (p Path) Bounds() geometry.Rect {
	if len(p.Points) == 0 {
		return geometry.Rect{}
	}
	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points[1:] {
		minX = math.Min(minX, pt.X)
		maxX = math.Max(maxX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxY = math.Max(maxY, pt.Y)
	}
	return geometry.Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

// jit perturbs one coordinate for the given frame.
func jit(frameNumber int, base float64) float64 {
	return base + jitter.PathJitter(frameNumber, base, wobble)
}

// Highlight builds the closed path for one highlight kind over the frame
// rectangle. The cross kind is not a highlight path; use Cross.
func Highlight(frame geometry.Rect, kind sheet.HighlightKind, frameNumber int) Path {
	box := frame.Outset(Margin)
	switch kind {
	case sheet.HighlightCircle:
		return ellipsePath(box, frameNumber)
	case sheet.HighlightScribble:
		return scribblePath(box, frameNumber)
	default:
		return rectanglePath(box, frameNumber)
	}
}

// rectanglePath traces the box edges with a few jittered vertices per
// side, so the stroke reads as drawn in one motion.
func rectanglePath(box geometry.Rect, frameNumber int) Path {
	const perSide = 4
	var pts []Point
	corners := []Point{
		{box.Left, box.Top},
		{box.Right(), box.Top},
		{box.Right(), box.Bottom()},
		{box.Left, box.Bottom()},
	}
	for c := 0; c < 4; c++ {
		a, b := corners[c], corners[(c+1)%4]
		for i := 0; i < perSide; i++ {
			t := float64(i) / perSide
			x := a.X + (b.X-a.X)*t
			y := a.Y + (b.Y-a.Y)*t
			pts = append(pts, Point{jit(frameNumber, x), jit(frameNumber, y)})
		}
	}
	return Path{Points: pts, Closed: true}
}

// ellipsePath approximates an ellipse inscribed in the box.
func ellipsePath(box geometry.Rect, frameNumber int) Path {
	const segments = 24
	cx := box.Left + box.Width/2
	cy := box.Top + box.Height/2
	rx := box.Width / 2
	ry := box.Height / 2
	var pts []Point
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		x := cx + rx*math.Cos(a)
		y := cy + ry*math.Sin(a)
		pts = append(pts, Point{jit(frameNumber, x), jit(frameNumber, y)})
	}
	return Path{Points: pts, Closed: true}
}

// scribblePath sweeps a diagonal zigzag across the box and closes along
// the bottom edge.
func scribblePath(box geometry.Rect, frameNumber int) Path {
	const strokes = 7
	var pts []Point
	step := box.Width / strokes
	for i := 0; i <= strokes; i++ {
		x := box.Left + step*float64(i)
		y := box.Top
		if i%2 == 1 {
			y = box.Bottom()
		}
		pts = append(pts, Point{jit(frameNumber, x), jit(frameNumber, y)})
	}
	return Path{Points: pts, Closed: true}
}

// Cross builds the two crossing strokes centered on the frame. It is a
// separate overlay layer: a frame can carry both a highlight and a cross.
func Cross(frame geometry.Rect, frameNumber int) [2]Path {
	box := frame.Outset(Margin)
	seg := func(a, b Point) Path {
		const mids = 3
		pts := []Point{{jit(frameNumber, a.X), jit(frameNumber, a.Y)}}
		for i := 1; i <= mids; i++ {
			t := float64(i) / (mids + 1)
			x := a.X + (b.X-a.X)*t
			y := a.Y + (b.Y-a.Y)*t
			pts = append(pts, Point{jit(frameNumber, x), jit(frameNumber, y)})
		}
		pts = append(pts, Point{jit(frameNumber, b.X), jit(frameNumber, b.Y)})
		return Path{Points: pts}
	}
	return [2]Path{
		seg(Point{box.Left, box.Top}, Point{box.Right(), box.Bottom()}),
		seg(Point{box.Right(), box.Top}, Point{box.Left, box.Bottom()}),
	}
}

// Sheet is the assembled overlay for a whole layout: the highlight layer
// and the cross layer, kept separate so surfaces can stack them the same
// way.
type Sheet struct {
	Highlights []Path
	Crosses    []Path
}

// Build assembles overlay paths for every frame in order. frames must be
// the snapshot's ordered frame list matching the layout's frame count.
func Build(layout geometry.Layout, frames []sheet.Frame) Sheet {
	var out Sheet
	for i, f := range frames {
		rect, ok := layout.FrameRect(i)
		if !ok {
			continue
		}
		n := i + 1
		for _, kind := range []sheet.HighlightKind{sheet.HighlightRectangle, sheet.HighlightCircle, sheet.HighlightScribble} {
			if f.Highlights.Get(kind) {
				out.Highlights = append(out.Highlights, Highlight(rect, kind, n))
			}
		}
		if f.Highlights.Cross {
			c := Cross(rect, n)
			out.Crosses = append(out.Crosses, c[0], c[1])
		}
	}
	return out
}
