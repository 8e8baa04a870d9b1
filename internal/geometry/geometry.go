// Package geometry computes the pixel layout of a contact sheet from a
// frame count and a scale factor.
//
// Every function here is a pure projection: strips, frame rectangles and
// canvas dimensions are always recomputed from the ordered frame count,
// never stored. All three rendering surfaces (editor, browser export,
// compositing export) consume the same arithmetic, so counts use integer
// floor/ceil and pixel offsets stay float64 until the final raster.
package geometry

import "math"

// Unscaled layout constants. These are the single canonical set shared by
// every surface; the scale factor multiplies them uniformly.
const (
	FrameWidth  = 190.0
	FrameHeight = 130.0

	// StripHeight exceeds FrameHeight to leave room for the sprocket-hole
	// and ornament overlays above and below the exposures.
	StripHeight = 210.0

	FrameGap      = 8.0
	StripGap      = 40.0
	CanvasPadding = 48.0

	FramesPerStrip = 6
)

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Outset returns the rectangle grown by m pixels on every side.
func (r Rect) Outset(m float64) Rect {
	return Rect{Left: r.Left - m, Top: r.Top - m, Width: r.Width + 2*m, Height: r.Height + 2*m}
}

// StripCount returns the number of strips needed for frameCount frames.
func StripCount(frameCount int) int {
	if frameCount <= 0 {
		return 0
	}
	return (frameCount + FramesPerStrip - 1) / FramesPerStrip
}

// FramesInStrip returns how many frames the strip at stripIndex holds.
// Every strip is full except possibly the last.
func FramesInStrip(stripIndex, frameCount int) int {
	if stripIndex < 0 || stripIndex >= StripCount(frameCount) {
		return 0
	}
	remaining := frameCount - stripIndex*FramesPerStrip
	if remaining > FramesPerStrip {
		return FramesPerStrip
	}
	return remaining
}

// Layout is the complete pixel geometry of a sheet at one scale. Obtain
// one via For; the fields are derived and must not be mutated.
type Layout struct {
	FrameCount int
	Scale      float64

	CanvasWidth  float64
	CanvasHeight float64

	// Strips holds the absolute canvas rectangle of each strip backing,
	// top to bottom.
	Strips []Rect
}

// For computes the layout for frameCount frames at the given scale.
// Results are memoized per (frameCount, scale); the returned value is
// shared and read-only.
func For(frameCount int, scale float64) Layout {
	if frameCount < 0 {
		frameCount = 0
	}
	if scale <= 0 {
		scale = 1
	}
	if l, ok := layoutCache.get(frameCount, scale); ok {
		return l
	}
	l := compute(frameCount, scale)
	layoutCache.put(l)
	return l
}

func compute(frameCount int, scale float64) Layout {
	strips := StripCount(frameCount)

	l := Layout{
		FrameCount: frameCount,
		Scale:      scale,
		Strips:     make([]Rect, 0, strips),
	}

	padding := CanvasPadding * scale
	stripH := StripHeight * scale

	widest := 0.0
	top := padding
	for i := 0; i < strips; i++ {
		w := StripWidth(FramesInStrip(i, frameCount), scale)
		if w > widest {
			widest = w
		}
		l.Strips = append(l.Strips, Rect{Left: padding, Top: top, Width: w, Height: stripH})
		top += stripH
		if i != strips-1 {
			top += StripGap * scale
		}
	}

	l.CanvasWidth = widest + 2*padding
	l.CanvasHeight = top + padding
	if strips == 0 {
		// An empty sheet still has a valid, renderable canvas.
		l.CanvasWidth = 2 * padding
		l.CanvasHeight = 2 * padding
	}
	return l
}

// StripWidth returns the pixel width of a strip holding n frames.
func StripWidth(n int, scale float64) float64 {
	if n <= 0 {
		return 0
	}
	return (float64(n)*FrameWidth + float64(n-1)*FrameGap) * scale
}

// FrameRectInStrip returns the frame rectangle relative to its strip's
// top-left corner. Frames are vertically centered within the taller strip
// backing.
func FrameRectInStrip(indexInStrip int, scale float64) Rect {
	return Rect{
		Left:   float64(indexInStrip) * (FrameWidth + FrameGap) * scale,
		Top:    (StripHeight - FrameHeight) / 2 * scale,
		Width:  FrameWidth * scale,
		Height: FrameHeight * scale,
	}
}

// FrameRect returns the absolute canvas rectangle of the frame at the
// 0-based frameIndex. The rectangle ignores strip rotation: rotation is a
// paint-time transform about the strip center and does not alter the
// underlying coordinates annotations are anchored to.
func (l Layout) FrameRect(frameIndex int) (Rect, bool) {
	if frameIndex < 0 || frameIndex >= l.FrameCount {
		return Rect{}, false
	}
	strip := frameIndex / FramesPerStrip
	in := FrameRectInStrip(frameIndex%FramesPerStrip, l.Scale)
	origin := l.Strips[strip]
	in.Left += origin.Left
	in.Top += origin.Top
	return in, true
}

// FrameAt returns the 0-based index of the frame containing the canvas
// point (x, y), or false when the point is outside every frame.
func (l Layout) FrameAt(x, y float64) (int, bool) {
	for i := 0; i < l.FrameCount; i++ {
		if r, ok := l.FrameRect(i); ok && r.Contains(x, y) {
			return i, true
		}
	}
	return 0, false
}

// ClampSticker clamps a sticker's top-left position so the sticker of the
// given size stays fully inside the canvas.
func (l Layout) ClampSticker(left, top, width, height float64) (float64, float64) {
	left = math.Min(math.Max(left, 0), math.Max(l.CanvasWidth-width, 0))
	top = math.Min(math.Max(top, 0), math.Max(l.CanvasHeight-height, 0))
	return left, top
}
