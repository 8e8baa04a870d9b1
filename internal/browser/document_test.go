package browser

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/jitter"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// pngURI is a 1x1 PNG, enough for document assembly.
const pngURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func buildSnapshot(n int) sheet.Snapshot {
	store := sheet.NewStore()
	for i := 0; i < n; i++ {
		store.AddFrame(pngURI)
	}
	return store.Snapshot()
}

func TestDocumentLayout(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()

	doc, err := Document(lib, buildSnapshot(14), 0)
	if err != nil {
		t.Fatal(err)
	}

	layout := geometry.For(14, 1)
	if !strings.Contains(doc, fmt.Sprintf("width: %vpx", layout.CanvasWidth)) {
		t.Error("document missing exact canvas width")
	}
	if got := strings.Count(doc, `class="frame"`); got != 14 {
		t.Errorf("document has %d frame images, want 14", got)
	}
	if got := strings.Count(doc, `class="strip"`); got != 3 {
		t.Errorf("document has %d strips, want 3", got)
	}
	// Strip tilts come from the shared formula.
	for si := 0; si < 3; si++ {
		want := fmt.Sprintf("rotate(%vdeg)", jitter.StripRotation(si))
		if !strings.Contains(doc, want) {
			t.Errorf("document missing strip %d rotation %s", si, want)
		}
	}
	if !strings.Contains(doc, "window.__sheetReady") {
		t.Error("document missing decode-readiness script")
	}
}

func TestDocumentEmptySheet(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()
	doc, err := Document(lib, buildSnapshot(0), 0)
	if err != nil {
		t.Fatalf("empty sheet must build, got %v", err)
	}
	if strings.Contains(doc, `class="frame"`) {
		t.Error("empty sheet document contains frames")
	}
}

func TestDocumentOverlaysAndStickers(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()

	store := sheet.NewStore()
	id := store.AddFrame(pngURI)
	store.ToggleHighlight(id, sheet.HighlightCircle)
	store.ToggleHighlight(id, sheet.HighlightCross)
	tid := store.PlaceSticker(sheet.StickerText, 30, 30)
	store.CommitText(tid, "reprint <scripts> & all")
	store.PlaceSticker(sheet.StickerDot, 90, 90)

	doc, err := Document(lib, store.Snapshot(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(doc, `class="hl"`); got != 1 {
		t.Errorf("document has %d highlight overlays, want 1", got)
	}
	// A cross contributes two strokes on the separate SVG layer.
	if got := strings.Count(doc, "<path"); got != 2 {
		t.Errorf("document has %d cross strokes, want 2", got)
	}
	// Text is escaped, not injected.
	if strings.Contains(doc, "<scripts>") {
		t.Error("sticker text was not HTML-escaped")
	}
	if !strings.Contains(doc, "&lt;scripts&gt;") {
		t.Error("escaped sticker text missing")
	}
}

func TestDocumentTextStickerTapeOffset(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()

	store := sheet.NewStore()
	store.AddFrame(pngURI)
	a := store.PlaceSticker(sheet.StickerText, 30, 30)
	store.CommitText(a, "first")
	b := store.PlaceSticker(sheet.StickerText, 120, 30)
	store.CommitText(b, "second")

	doc, err := Document(lib, store.Snapshot(), 0)
	if err != nil {
		t.Fatal(err)
	}

	// Each tape starts its tick pattern at the deterministic repeat
	// offset folded into one 24px period, matching the compositor.
	for i := 0; i < 2; i++ {
		off := math.Mod(jitter.TextRepeatOffset(i), 24)
		if off < 0 {
			off += 24
		}
		want := fmt.Sprintf("background-position:%vpx 0", off)
		if !strings.Contains(doc, want) {
			t.Errorf("document missing tape offset %q for sticker %d", want, i)
		}
	}
	if !strings.Contains(doc, "repeating-linear-gradient") {
		t.Error("document missing repeating tape tick background")
	}
}

func TestDocumentRotation(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()
	doc, err := Document(lib, buildSnapshot(2), 7.5)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "rotate(7.5deg)") {
		t.Error("document missing global rotation transform")
	}
}

func TestDocumentInvalidSnapshot(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()
	if _, err := Document(lib, sheet.Snapshot{}, 0); !errors.Is(err, sheet.ErrMalformed) {
		t.Errorf("invalid snapshot error = %v, want ErrMalformed", err)
	}
}

func TestDocumentMissingPhoto(t *testing.T) {
	lib := assets.NewLibrary("", "")
	defer lib.Close()
	store := sheet.NewStore()
	store.AddFrame("missing.jpg")
	if _, err := Document(lib, store.Snapshot(), 0); !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("missing photo error = %v, want ErrNotFound", err)
	}
}
