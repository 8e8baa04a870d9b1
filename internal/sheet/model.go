// Package sheet holds the canonical contact-sheet state: the ordered
// frame list with per-frame highlight flags, the free-floating stickers,
// and the static configuration tables (film stocks, sticker kinds,
// highlight assets) every rendering surface shares.
package sheet

import "fmt"

// HighlightKind is one of the independent per-frame annotation flags.
type HighlightKind string

const (
	HighlightRectangle HighlightKind = "rectangle"
	HighlightCircle    HighlightKind = "circle"
	HighlightScribble  HighlightKind = "scribble"
	HighlightCross     HighlightKind = "cross"
)

// HighlightKinds lists every kind in a stable order.
var HighlightKinds = []HighlightKind{
	HighlightRectangle, HighlightCircle, HighlightScribble, HighlightCross,
}

// Highlights is the set of annotation flags on one frame. Any subset may
// be true at once; the cross renders as a separate overlay layer from the
// other three.
type Highlights struct {
	Rectangle bool `json:"rectangle,omitempty"`
	Circle    bool `json:"circle,omitempty"`
	Scribble  bool `json:"scribble,omitempty"`
	Cross     bool `json:"cross,omitempty"`
}

// Get returns the flag for kind.
func (h Highlights) Get(kind HighlightKind) bool {
	switch kind {
	case HighlightRectangle:
		return h.Rectangle
	case HighlightCircle:
		return h.Circle
	case HighlightScribble:
		return h.Scribble
	case HighlightCross:
		return h.Cross
	}
	return false
}

// Toggle flips the flag for kind and reports whether the kind was known.
func (h *Highlights) Toggle(kind HighlightKind) bool {
	switch kind {
	case HighlightRectangle:
		h.Rectangle = !h.Rectangle
	case HighlightCircle:
		h.Circle = !h.Circle
	case HighlightScribble:
		h.Scribble = !h.Scribble
	case HighlightCross:
		h.Cross = !h.Cross
	default:
		return false
	}
	return true
}

// Frame is one photographic exposure slot. ImageRef is either a data URI
// (transient upload) or a filename resolved against the default asset
// folder; it must resolve to bytes at render time.
type Frame struct {
	ID         string     `json:"id"`
	ImageRef   string     `json:"src"`
	Highlights Highlights `json:"highlights"`
}

// StickerKind identifies a sticker variant. "text" carries user text; the
// decorative variants have fixed dimensions from StickerConfigs.
type StickerKind string

const (
	StickerText      StickerKind = "text"
	StickerDot       StickerKind = "dot"
	StickerTwinCheck StickerKind = "twin-check"
	StickerArrow     StickerKind = "arrow"
)

// StickerConfig is the static per-kind rendering configuration.
type StickerConfig struct {
	Width  float64
	Height float64
	// Rotation is a fixed visual tilt in degrees applied at paint time.
	Rotation float64
	// Asset is the decorative image filename under the sticker asset
	// directory; empty for text stickers, which render their own body.
	Asset string
}

// StickerConfigs is the closed set of sticker variants. All surfaces size
// and decorate stickers from this one table.
var StickerConfigs = map[StickerKind]StickerConfig{
	StickerText:      {Width: 160, Height: 44},
	StickerDot:       {Width: 36, Height: 36, Asset: "dot.png"},
	StickerTwinCheck: {Width: 64, Height: 32, Rotation: -4, Asset: "twin-check.png"},
	StickerArrow:     {Width: 56, Height: 40, Rotation: 8, Asset: "arrow.png"},
}

// Sticker is a free-floating annotation, independent of any frame. Top and
// Left are absolute canvas pixels at the sheet's current scale.
type Sticker struct {
	ID    string      `json:"id"`
	Kind  StickerKind `json:"type"`
	Left  float64     `json:"left"`
	Top   float64     `json:"top"`
	Text  string      `json:"text,omitempty"`
	Color string      `json:"color,omitempty"`
}

// Size returns the rendered dimensions for the sticker's kind.
func (s Sticker) Size() (w, h float64) {
	cfg, ok := StickerConfigs[s.Kind]
	if !ok {
		return 40, 40
	}
	return cfg.Width, cfg.Height
}

// FilmStock names a decorative asset set and its display name. Assets for
// a stock live under stocks/<ID>/ in the asset root.
type FilmStock struct {
	ID   string
	Name string
}

// DefaultStockID is used when an export payload omits filmStock.
const DefaultStockID = "portra400"

// FilmStocks is the closed set of selectable stocks.
var FilmStocks = map[string]FilmStock{
	"portra400": {ID: "portra400", Name: "Portra 400"},
	"trix400":   {ID: "trix400", Name: "Tri-X 400"},
	"hp5":       {ID: "hp5", Name: "HP5 Plus"},
}

// StockByID resolves a stock id, falling back to the default for empty
// input and erroring on unknown ids.
func StockByID(id string) (FilmStock, error) {
	if id == "" {
		id = DefaultStockID
	}
	s, ok := FilmStocks[id]
	if !ok {
		return FilmStock{}, fmt.Errorf("unknown film stock %q", id)
	}
	return s, nil
}

// HighlightAsset maps a highlight kind to its overlay image filename under
// highlights/ in the asset root. This is the one canonical table; the
// editor and both export renderers must consult it rather than carrying
// their own switch, so the surfaces cannot drift apart.
func HighlightAsset(kind HighlightKind) string {
	switch kind {
	case HighlightCircle:
		return "circle.png"
	case HighlightScribble:
		return "scribble.png"
	case HighlightCross:
		return "cross.png"
	default:
		// The rectangle highlight is the historical default overlay.
		return "default.png"
	}
}
