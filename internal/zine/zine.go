// Package zine assigns images to aspect-ratio-aware slots on a 16:9 page.
// It is pure layout: the drag-and-drop surface lives elsewhere and only
// asks which free slot suits an image best.
package zine

import (
	"math"

	"github.com/filmstriplab/filmstrip/internal/geometry"
)

// PageWidth and PageHeight define the 16:9 canvas in layout units.
const (
	PageWidth  = 1280.0
	PageHeight = 720.0
)

// Slot is one placement target on a page template.
type Slot struct {
	Rect geometry.Rect
	// Aspect is the slot's target width/height ratio.
	Aspect float64
}

// Template is a named arrangement of slots on one page.
type Template struct {
	Name  string
	Slots []Slot
}

// Templates is the fixed page catalogue. Slot rectangles stay inside the
// page bounds; aspects mix portrait and landscape targets.
var Templates = []Template{
	{
		Name: "spread",
		Slots: []Slot{
			{Rect: geometry.Rect{Left: 40, Top: 40, Width: 760, Height: 640}, Aspect: 760.0 / 640},
			{Rect: geometry.Rect{Left: 840, Top: 40, Width: 400, Height: 300}, Aspect: 400.0 / 300},
			{Rect: geometry.Rect{Left: 840, Top: 380, Width: 400, Height: 300}, Aspect: 400.0 / 300},
		},
	},
	{
		Name: "column",
		Slots: []Slot{
			{Rect: geometry.Rect{Left: 40, Top: 40, Width: 380, Height: 640}, Aspect: 380.0 / 640},
			{Rect: geometry.Rect{Left: 460, Top: 40, Width: 380, Height: 640}, Aspect: 380.0 / 640},
			{Rect: geometry.Rect{Left: 880, Top: 40, Width: 360, Height: 640}, Aspect: 360.0 / 640},
		},
	},
	{
		Name: "grid",
		Slots: []Slot{
			{Rect: geometry.Rect{Left: 40, Top: 40, Width: 590, Height: 310}, Aspect: 590.0 / 310},
			{Rect: geometry.Rect{Left: 650, Top: 40, Width: 590, Height: 310}, Aspect: 590.0 / 310},
			{Rect: geometry.Rect{Left: 40, Top: 370, Width: 590, Height: 310}, Aspect: 590.0 / 310},
			{Rect: geometry.Rect{Left: 650, Top: 370, Width: 590, Height: 310}, Aspect: 590.0 / 310},
		},
	},
}

// TemplateByName returns the named template.
func TemplateByName(name string) (Template, bool) {
	for _, t := range Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Placement maps an image (by input index) to a slot index.
type Placement struct {
	ImageIndex int
	SlotIndex  int
}

// Assign places images (given as width/height pairs) into the template's
// slots. Each image takes the free slot whose aspect ratio is closest to
// its own; exhausted slots leave later images unplaced. Assignment is
// deterministic in the input order.
func Assign(t Template, sizes [][2]int) []Placement {
	used := make([]bool, len(t.Slots))
	var out []Placement
	for i, wh := range sizes {
		if wh[0] <= 0 || wh[1] <= 0 {
			continue
		}
		aspect := float64(wh[0]) / float64(wh[1])
		best := -1
		bestDist := math.Inf(1)
		for si, slot := range t.Slots {
			if used[si] {
				continue
			}
			// Compare in log space so 2:1 vs 1:1 and 1:1 vs 1:2 are
			// equally distant.
			d := math.Abs(math.Log(aspect) - math.Log(slot.Aspect))
			if d < bestDist {
				bestDist = d
				best = si
			}
		}
		if best < 0 {
			break
		}
		used[best] = true
		out = append(out, Placement{ImageIndex: i, SlotIndex: best})
	}
	return out
}

// FitRect letterboxes an image of the given size inside a slot,
// preserving aspect ratio and centering the result.
func FitRect(slot Slot, w, h int) geometry.Rect {
	if w <= 0 || h <= 0 {
		return geometry.Rect{Left: slot.Rect.Left, Top: slot.Rect.Top}
	}
	scale := math.Min(slot.Rect.Width/float64(w), slot.Rect.Height/float64(h))
	fw, fh := float64(w)*scale, float64(h)*scale
	return geometry.Rect{
		Left:   slot.Rect.Left + (slot.Rect.Width-fw)/2,
		Top:    slot.Rect.Top + (slot.Rect.Height-fh)/2,
		Width:  fw,
		Height: fh,
	}
}
