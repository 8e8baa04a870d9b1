// Package render is the compositing export renderer: it turns a sheet
// snapshot into a raster image without a browser, by building a
// declarative element list from the shared geometry and jitter formulas
// and painting it bottom-up.
//
// Measurements are computed at scale 1 and multiplied uniformly by the
// DPI scale before composition, so the output matches the on-screen
// editor's composition at any export resolution.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"github.com/anthonynsimon/bild/transform"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/imaging"
	"github.com/filmstriplab/filmstrip/internal/jitter"
	"github.com/filmstriplab/filmstrip/internal/overlay"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// Options controls one composition.
type Options struct {
	// Scale is the DPI scale factor applied to every measurement.
	// Values <= 0 mean 1.
	Scale float64
	// Rotation is the whole-sheet rotation in degrees. Nonzero rotation
	// expands the output to the rotated bounding box.
	Rotation float64
}

// Background is the paper color behind the strips.
var Background = color.RGBA{R: 246, G: 244, B: 240, A: 255}

// crossColor is the stroke color of x-marks.
var crossColor = color.RGBA{R: 36, G: 36, B: 200, A: 230}

// Renderer composes sheets from a shared asset library.
type Renderer struct {
	lib *assets.Library
}

// New returns a renderer over lib.
func New(lib *assets.Library) *Renderer {
	return &Renderer{lib: lib}
}

// Compose rasterizes the snapshot. The context bounds asset resolution;
// a snapshot with an empty frame order yields the padding-only canvas.
func (r *Renderer) Compose(ctx context.Context, snap sheet.Snapshot, opts Options) (image.Image, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	stock, err := sheet.StockByID(snap.FilmStock)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sheet.ErrMalformed, err)
	}

	frames := snap.OrderedFrames()
	layout := geometry.For(len(frames), scale)

	canvas := image.NewRGBA(image.Rect(0, 0, pix(layout.CanvasWidth), pix(layout.CanvasHeight)))
	stddraw.Draw(canvas, canvas.Bounds(), image.NewUniform(Background), image.Point{}, stddraw.Src)

	if err := r.paintTitle(canvas, stock, scale); err != nil {
		return nil, err
	}

	for si := range layout.Strips {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compose cancelled: %w", err)
		}
		if err := r.paintStrip(ctx, canvas, snap, layout, stock, si, scale); err != nil {
			return nil, err
		}
	}

	if err := r.paintHighlights(canvas, layout, frames, scale); err != nil {
		return nil, err
	}
	r.paintCrosses(canvas, frames, scale)

	if err := r.paintStickers(canvas, snap, scale); err != nil {
		return nil, err
	}

	if opts.Rotation != 0 {
		// ResizeBounds expands the output to the rotated bounding box so
		// corners are never clipped.
		rotated := transform.Rotate(canvas, opts.Rotation, &transform.RotationOptions{ResizeBounds: true})
		log.Debug().Float64("rotation", opts.Rotation).
			Int("width", rotated.Bounds().Dx()).Int("height", rotated.Bounds().Dy()).
			Msg("applied global rotation")
		return rotated, nil
	}
	return canvas, nil
}

// paintStrip renders one strip (backing, sprockets, photos, index labels)
// into its own layer, applies the strip's deterministic tilt, and pastes
// it centered on the strip rectangle.
func (r *Renderer) paintStrip(ctx context.Context, canvas *image.RGBA, snap sheet.Snapshot, layout geometry.Layout, stock sheet.FilmStock, si int, scale float64) error {
	stripRect := layout.Strips[si]
	w, h := pix(stripRect.Width), pix(stripRect.Height)
	layer := image.NewRGBA(image.Rect(0, 0, w, h))

	backing, err := r.assetImage(func() ([]byte, error) { return r.lib.Stock(stock.ID, "frame.png") })
	if err != nil {
		return fmt.Errorf("stock %s backing: %w", stock.ID, err)
	}
	scaleInto(layer, backing, geometry.Rect{Width: stripRect.Width, Height: stripRect.Height})

	sprockets, err := r.assetImage(func() ([]byte, error) { return r.lib.Stock(stock.ID, "sprockets.png") })
	if err != nil {
		return fmt.Errorf("stock %s sprockets: %w", stock.ID, err)
	}
	bandH := (geometry.StripHeight - geometry.FrameHeight) / 2 * scale * 0.6
	scaleInto(layer, sprockets, geometry.Rect{Left: 0, Top: 0, Width: stripRect.Width, Height: bandH})
	scaleInto(layer, sprockets, geometry.Rect{Left: 0, Top: stripRect.Height - bandH, Width: stripRect.Width, Height: bandH})

	n := geometry.FramesInStrip(si, layout.FrameCount)
	for j := 0; j < n; j++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("compose cancelled: %w", err)
		}
		frameIndex := si*geometry.FramesPerStrip + j
		f := snap.Frames[snap.FrameOrder[frameIndex]]
		rect := geometry.FrameRectInStrip(j, scale)

		photoBytes, err := r.lib.Resolve(f.ImageRef)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frameIndex+1, err)
		}
		photo, _, err := imaging.Decode(photoBytes)
		if err != nil {
			return fmt.Errorf("frame %d: %w", frameIndex+1, err)
		}
		scaleInto(layer, photo, rect)

		r.paintIndex(layer, stock, frameIndex+1, rect, scale)
	}

	// dx edge mark at the strip's trailing end.
	if dx, err := r.assetImage(func() ([]byte, error) { return r.lib.Stock(stock.ID, "dx.png") }); err == nil {
		mw, mh := 18*scale, 10*scale
		scaleInto(layer, dx, geometry.Rect{Left: stripRect.Width - mw - 4*scale, Top: stripRect.Height/2 - mh/2, Width: mw, Height: mh})
	}

	angle := jitter.StripRotation(si)
	placed := image.Image(layer)
	if angle != 0 {
		placed = transform.Rotate(layer, angle, &transform.RotationOptions{ResizeBounds: true})
	}
	// Paste centered so rotation pivots about the strip center.
	cx := stripRect.Left + stripRect.Width/2
	cy := stripRect.Top + stripRect.Height/2
	pb := placed.Bounds()
	origin := image.Pt(pix(cx)-pb.Dx()/2, pix(cy)-pb.Dy()/2)
	stddraw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(pb.Size())}, placed, pb.Min, stddraw.Over)
	return nil
}

// paintIndex composites the burnt-in frame number, falling back to a
// drawn label for stocks without index art.
func (r *Renderer) paintIndex(layer *image.RGBA, stock sheet.FilmStock, frameNumber int, frameRect geometry.Rect, scale float64) {
	target := geometry.Rect{
		Left:   frameRect.Left + 4*scale,
		Top:    frameRect.Bottom() + 2*scale,
		Width:  22 * scale,
		Height: 12 * scale,
	}
	if img, err := r.assetImage(func() ([]byte, error) { return r.lib.Index(stock.ID, frameNumber) }); err == nil {
		scaleInto(layer, img, target)
		return
	}
	drawLabel(layer, fmt.Sprintf("%d", frameNumber), pix(target.Left), pix(target.Top+10*scale), color.RGBA{R: 235, G: 120, B: 40, A: 255})
}

func (r *Renderer) paintTitle(canvas *image.RGBA, stock sheet.FilmStock, scale float64) error {
	title, err := r.assetImage(func() ([]byte, error) { return r.lib.Stock(stock.ID, "title.png") })
	if err != nil {
		return fmt.Errorf("stock %s title: %w", stock.ID, err)
	}
	rect := geometry.Rect{
		Left:   geometry.CanvasPadding * scale,
		Top:    10 * scale,
		Width:  120 * scale,
		Height: 24 * scale,
	}
	scaleInto(canvas, title, rect)
	drawLabel(canvas, stock.Name, pix(rect.Right()+8*scale), pix(rect.Top+16*scale), color.RGBA{R: 90, G: 86, B: 80, A: 255})
	return nil
}

// paintHighlights composites the named highlight overlay image for each
// set flag, sized to the frame rectangle plus the shared outward margin.
func (r *Renderer) paintHighlights(canvas *image.RGBA, layout geometry.Layout, frames []sheet.Frame, scale float64) error {
	for i, f := range frames {
		rect, ok := layout.FrameRect(i)
		if !ok {
			continue
		}
		box := rect.Outset(overlay.Margin * scale)
		for _, kind := range []sheet.HighlightKind{sheet.HighlightRectangle, sheet.HighlightCircle, sheet.HighlightScribble} {
			if !f.Highlights.Get(kind) {
				continue
			}
			img, err := r.assetImage(func() ([]byte, error) { return r.lib.Highlight(kind) })
			if err != nil {
				return fmt.Errorf("frame %d highlight %s: %w", i+1, kind, err)
			}
			scaleInto(canvas, img, box)
		}
	}
	return nil
}

// paintCrosses rasterizes the x-mark strokes as a separate layer above
// the highlights, using the same jittered paths as the live surface.
// Paths are built on the unscaled frame rect so the wobble pattern is
// the one the editor shows, then every vertex is multiplied by the DPI
// scale.
func (r *Renderer) paintCrosses(canvas *image.RGBA, frames []sheet.Frame, scale float64) {
	width := 3 * scale
	base := geometry.For(len(frames), 1)
	for i, f := range frames {
		if !f.Highlights.Cross {
			continue
		}
		rect, ok := base.FrameRect(i)
		if !ok {
			continue
		}
		for _, stroke := range overlay.Cross(rect, i+1) {
			strokePath(canvas, scalePath(stroke, scale), width, crossColor)
		}
	}
}

// scalePath multiplies every vertex by the DPI scale.
func scalePath(p overlay.Path, scale float64) overlay.Path {
	if scale == 1 {
		return p
	}
	out := overlay.Path{Points: make([]overlay.Point, len(p.Points)), Closed: p.Closed}
	for i, pt := range p.Points {
		out.Points[i] = overlay.Point{X: pt.X * scale, Y: pt.Y * scale}
	}
	return out
}

func (r *Renderer) paintStickers(canvas *image.RGBA, snap sheet.Snapshot, scale float64) error {
	for i, st := range snap.OrderedStickers() {
		cfg := sheet.StickerConfigs[st.Kind]
		rect := geometry.Rect{
			Left:   st.Left * scale,
			Top:    st.Top * scale,
			Width:  cfg.Width * scale,
			Height: cfg.Height * scale,
		}
		if st.Kind == sheet.StickerText {
			r.paintTextSticker(canvas, st, rect, i, scale)
			continue
		}
		img, err := r.assetImage(func() ([]byte, error) { return r.lib.Sticker(st.Kind) })
		if err != nil {
			return fmt.Errorf("sticker %s: %w", st.ID, err)
		}
		if cfg.Rotation != 0 {
			layer := image.NewRGBA(image.Rect(0, 0, pix(rect.Width), pix(rect.Height)))
			scaleInto(layer, img, geometry.Rect{Width: rect.Width, Height: rect.Height})
			rot := transform.Rotate(layer, cfg.Rotation, &transform.RotationOptions{ResizeBounds: true})
			origin := image.Pt(pix(rect.Left+rect.Width/2)-rot.Bounds().Dx()/2, pix(rect.Top+rect.Height/2)-rot.Bounds().Dy()/2)
			stddraw.Draw(canvas, image.Rectangle{Min: origin, Max: origin.Add(rot.Bounds().Size())}, rot, rot.Bounds().Min, stddraw.Over)
			continue
		}
		scaleInto(canvas, img, rect)
	}
	return nil
}

// paintTextSticker draws the repeating label-tape background, offset by
// the deterministic text formula, then the text itself.
func (r *Renderer) paintTextSticker(canvas *image.RGBA, st sheet.Sticker, rect geometry.Rect, orderIndex int, scale float64) {
	tape := color.RGBA{R: 252, G: 248, B: 230, A: 245}
	band := image.Rect(pix(rect.Left), pix(rect.Top), pix(rect.Right()), pix(rect.Bottom()))
	stddraw.Draw(canvas, band, image.NewUniform(tape), image.Point{}, stddraw.Over)

	// Perforation ticks repeat across the tape; the start offset wobbles
	// per sticker so adjacent tapes do not align.
	offset := jitter.TextRepeatOffset(orderIndex) * scale
	step := 24 * scale
	tick := color.RGBA{R: 210, G: 200, B: 170, A: 255}
	start := math.Mod(offset, step)
	if start < 0 {
		start += step
	}
	for x := rect.Left + start; x < rect.Right(); x += step {
		line := image.Rect(pix(x), pix(rect.Top), pix(x)+1, pix(rect.Top+4*scale))
		stddraw.Draw(canvas, line, image.NewUniform(tick), image.Point{}, stddraw.Over)
	}

	col := color.RGBA{R: 30, G: 30, B: 30, A: 255}
	if st.Color != "" {
		if parsed, ok := parseHexColor(st.Color); ok {
			col = parsed
		}
	}
	drawLabel(canvas, st.Text, pix(rect.Left+8*scale), pix(rect.Top+rect.Height/2+4*scale), col)
}

// assetImage resolves and decodes one decoration.
func (r *Renderer) assetImage(load func() ([]byte, error)) (image.Image, error) {
	b, err := load()
	if err != nil {
		return nil, err
	}
	img, _, err := imaging.Decode(b)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// scaleInto scales src to fill the target rectangle on dst.
func scaleInto(dst *image.RGBA, src image.Image, rect geometry.Rect) {
	target := image.Rect(pix(rect.Left), pix(rect.Top), pix(rect.Right()), pix(rect.Bottom()))
	if target.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
}

// pix rounds a float measurement to output pixels. Rounding happens only
// here, at the final raster step.
func pix(v float64) int {
	return int(math.Round(v))
}

func parseHexColor(s string) (color.RGBA, bool) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, false
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}
