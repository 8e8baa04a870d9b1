package render

import (
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/filmstriplab/filmstrip/internal/overlay"
)

// strokePath paints the polyline with round caps by stamping filled disks
// along each segment. Step size stays under half the stroke radius so the
// stroke has no gaps.
func strokePath(dst *image.RGBA, p overlay.Path, width float64, col color.Color) {
	if len(p.Points) == 0 {
		return
	}
	pts := p.Points
	if p.Closed {
		pts = append(append([]overlay.Point(nil), pts...), pts[0])
	}
	r := width / 2
	if r < 0.5 {
		r = 0.5
	}
	for i := 0; i < len(pts)-1; i++ {
		stampSegment(dst, pts[i], pts[i+1], r, col)
	}
}

func stampSegment(dst *image.RGBA, a, b overlay.Point, r float64, col color.Color) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	steps := int(length/(r/2)) + 1
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		stampDisk(dst, a.X+dx*t, a.Y+dy*t, r, col)
	}
}

func stampDisk(dst *image.RGBA, cx, cy, r float64, col color.Color) {
	minX, maxX := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	minY, maxY := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	src := image.NewUniform(col)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			ddx, ddy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if ddx*ddx+ddy*ddy <= r*r {
				stddraw.Draw(dst, image.Rect(x, y, x+1, y+1), src, image.Point{}, stddraw.Over)
			}
		}
	}
}

// drawLabel renders small text at the (x, y) baseline with the built-in
// bitmap face. Used for stock names and index-number fallbacks.
func drawLabel(dst *image.RGBA, text string, x, y int, col color.Color) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
