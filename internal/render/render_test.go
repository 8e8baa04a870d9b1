package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/overlay"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

func imageWithColor(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// tinyPNG is a 2x2 photo stand-in encoded on the fly.
func tinyPNG(t *testing.T) string {
	t.Helper()
	img := imageWithColor(2, 2, color.RGBA{R: 120, G: 90, B: 60, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return assets.DataURI("image/png", buf.Bytes())
}

func snapshotWith(t *testing.T, n int) sheet.Snapshot {
	t.Helper()
	store := sheet.NewStore()
	uri := tinyPNG(t)
	for i := 0; i < n; i++ {
		store.AddFrame(uri)
	}
	return store.Snapshot()
}

func newRenderer() *Renderer {
	return New(assets.NewLibrary("", ""))
}

func TestComposeCanvasDimensions(t *testing.T) {
	snap := snapshotWith(t, 14)
	img, err := newRenderer().Compose(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	layout := geometry.For(14, 1)
	if got := img.Bounds().Dx(); got != int(math.Round(layout.CanvasWidth)) {
		t.Errorf("width = %d, want %v", got, layout.CanvasWidth)
	}
	if got := img.Bounds().Dy(); got != int(math.Round(layout.CanvasHeight)) {
		t.Errorf("height = %d, want %v", got, layout.CanvasHeight)
	}
}

func TestComposeEmptySheet(t *testing.T) {
	store := sheet.NewStore()
	img, err := newRenderer().Compose(context.Background(), store.Snapshot(), Options{})
	if err != nil {
		t.Fatalf("empty sheet must render, got %v", err)
	}
	want := int(2 * geometry.CanvasPadding)
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Errorf("empty canvas = %v, want %dx%d", img.Bounds(), want, want)
	}
}

func TestComposeScaleFactor(t *testing.T) {
	snap := snapshotWith(t, 6)
	a, err := newRenderer().Compose(context.Background(), snap, Options{Scale: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := newRenderer().Compose(context.Background(), snap, Options{Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b.Bounds().Dx() != 2*a.Bounds().Dx() || b.Bounds().Dy() != 2*a.Bounds().Dy() {
		t.Errorf("scale 2 = %v, want double of %v", b.Bounds(), a.Bounds())
	}
}

func TestComposeRotationExpandsBounds(t *testing.T) {
	snap := snapshotWith(t, 6)
	flat, err := newRenderer().Compose(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	tilted, err := newRenderer().Compose(context.Background(), snap, Options{Rotation: 10})
	if err != nil {
		t.Fatal(err)
	}
	if tilted.Bounds().Dx() <= flat.Bounds().Dx() || tilted.Bounds().Dy() <= flat.Bounds().Dy() {
		t.Errorf("rotated bounds %v not expanded beyond %v", tilted.Bounds(), flat.Bounds())
	}
}

func TestComposeInvalidSnapshot(t *testing.T) {
	_, err := newRenderer().Compose(context.Background(), sheet.Snapshot{}, Options{})
	if !errors.Is(err, sheet.ErrMalformed) {
		t.Errorf("invalid snapshot error = %v, want ErrMalformed", err)
	}
}

func TestComposeMissingPhotoFailsWhole(t *testing.T) {
	store := sheet.NewStore()
	store.AddFrame(tinyPNG(t))
	store.AddFrame("does-not-exist.jpg")
	_, err := newRenderer().Compose(context.Background(), store.Snapshot(), Options{})
	if !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("missing photo error = %v, want ErrNotFound (no partial image)", err)
	}
}

func TestComposeDeterministic(t *testing.T) {
	snap := snapshotWith(t, 8)
	id := snap.FrameOrder[2]
	f := snap.Frames[id]
	f.Highlights.Circle = true
	f.Highlights.Cross = true
	snap.Frames[id] = f

	a, err := newRenderer().Compose(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := newRenderer().Compose(context.Background(), snap, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !a.Bounds().Eq(b.Bounds()) {
		t.Fatal("bounds differ between identical renders")
	}
	// Spot-check pixels across the canvas; the whole point of the jitter
	// scheme is bit-identical repeated renders.
	for y := 0; y < a.Bounds().Dy(); y += 37 {
		for x := 0; x < a.Bounds().Dx(); x += 37 {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("pixel (%d,%d) differs between identical renders", x, y)
			}
		}
	}
}

func TestComposeCrossScalesUniformly(t *testing.T) {
	store := sheet.NewStore()
	store.AddFrame(tinyPNG(t))
	snap := store.Snapshot()
	id := snap.FrameOrder[0]
	f := snap.Frames[id]
	f.Highlights.Cross = true
	snap.Frames[id] = f

	const scale = 2.0
	img, err := newRenderer().Compose(context.Background(), snap, Options{Scale: scale})
	if err != nil {
		t.Fatal(err)
	}
	canvas, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("compose returned %T, want *image.RGBA", img)
	}

	// The cross must land exactly where the scale-1 paths land, times the
	// scale: the same geometry the browser document produces when its
	// viewport is scaled. Every control point must sit on inked (blue-
	// dominant) pixels; a wobble computed from scaled coordinates drifts
	// past the stroke radius and fails this.
	rect, _ := geometry.For(1, 1).FrameRect(0)
	for si, stroke := range overlay.Cross(rect, 1) {
		for pi, pt := range stroke.Points {
			c := canvas.RGBAAt(pix(pt.X*scale), pix(pt.Y*scale))
			if c.B <= c.R {
				t.Errorf("stroke %d point %d at (%.1f,%.1f): pixel %v not cross-colored",
					si, pi, pt.X*scale, pt.Y*scale, c)
			}
		}
	}
}

func TestComposeWithStickers(t *testing.T) {
	store := sheet.NewStore()
	store.AddFrame(tinyPNG(t))
	store.PlaceSticker(sheet.StickerDot, 60, 60)
	id := store.PlaceSticker(sheet.StickerText, 100, 30)
	store.CommitText(id, "KEEP")
	store.PlaceSticker(sheet.StickerTwinCheck, 200, 40)

	if _, err := newRenderer().Compose(context.Background(), store.Snapshot(), Options{}); err != nil {
		t.Fatalf("sticker composition failed: %v", err)
	}
}

func TestComposeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newRenderer().Compose(ctx, snapshotWith(t, 12), Options{})
	if err == nil {
		t.Error("cancelled context did not abort composition")
	}
}
