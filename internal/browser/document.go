// Package browser is the screenshot export renderer: it rebuilds the
// sheet as a complete standalone HTML document from the shared geometry
// and jitter formulas, loads it in headless Chrome, waits for every image
// to decode, and captures a pixel-exact crop of the canvas.
package browser

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strings"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/jitter"
	"github.com/filmstriplab/filmstrip/internal/overlay"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// docTemplate is the standalone document. Everything is inlined: the
// capture host has no network access to the app, so each image arrives as
// a data URI. The readiness flag flips only after every image decodes.
const docTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  * { margin: 0; padding: 0; }
  body { background: rgb(246,244,240); }
  #sheet { position: relative; width: {{.CanvasW}}px; height: {{.CanvasH}}px;
           {{if .Rotation}}transform: rotate({{.Rotation}}deg); transform-origin: center center;{{end}} }
  .strip { position: absolute; background-size: 100% 100%; }
  .frame { position: absolute; object-fit: cover; }
  .band { position: absolute; left: 0; width: 100%; background-repeat: repeat-x; background-size: auto 100%; }
  .idx { position: absolute; font: 11px monospace; color: rgb(235,120,40); }
  .hl { position: absolute; }
  .sticker { position: absolute; }
  .sticker-text { background-color: rgba(252,248,230,0.96);
                  background-image: repeating-linear-gradient(to right, rgb(210,200,170) 0, rgb(210,200,170) 1px, transparent 1px, transparent 24px);
                  background-size: 100% 4px; background-repeat: no-repeat; background-origin: border-box;
                  font: 14px monospace; display: flex; align-items: center; padding-left: 8px; }
  svg.marks { position: absolute; left: 0; top: 0; pointer-events: none; }
</style>
</head>
<body>
<div id="sheet">
{{range .Strips}}
  <div class="strip" style="left:{{.Left}}px;top:{{.Top}}px;width:{{.Width}}px;height:{{.Height}}px;background-image:url('{{.Backing}}');transform:rotate({{.Rotation}}deg)">
    <div class="band" style="top:0;height:{{.BandH}}px;background-image:url('{{.Sprockets}}')"></div>
    <div class="band" style="bottom:0;height:{{.BandH}}px;background-image:url('{{.Sprockets}}')"></div>
    {{range .Frames}}
    <img class="frame" style="left:{{.Left}}px;top:{{.Top}}px;width:{{.Width}}px;height:{{.Height}}px" src="{{.Src}}">
    <span class="idx" style="left:{{.IdxLeft}}px;top:{{.IdxTop}}px">{{.Number}}</span>
    {{end}}
  </div>
{{end}}
{{range .Highlights}}
  <img class="hl" style="left:{{.Left}}px;top:{{.Top}}px;width:{{.Width}}px;height:{{.Height}}px" src="{{.Src}}">
{{end}}
<svg class="marks" width="{{.CanvasW}}" height="{{.CanvasH}}" viewBox="0 0 {{.CanvasW}} {{.CanvasH}}">
{{range .Crosses}}
  <path d="{{.}}" fill="none" stroke="rgba(36,36,200,0.9)" stroke-width="3" stroke-linecap="round"/>
{{end}}
</svg>
{{range .Stickers}}
  {{if .IsText}}
  <div class="sticker sticker-text" style="left:{{.Left}}px;top:{{.Top}}px;width:{{.Width}}px;height:{{.Height}}px;background-position:{{.TapeOffset}}px 0;color:{{.Color}}">{{.Text}}</div>
  {{else}}
  <img class="sticker" style="left:{{.Left}}px;top:{{.Top}}px;width:{{.Width}}px;height:{{.Height}}px;transform:rotate({{.Rotation}}deg)" src="{{.Src}}">
  {{end}}
{{end}}
</div>
<script>
  Promise.all(Array.from(document.images).map(function(i) { return i.decode(); }))
    .then(function() { window.__sheetReady = true; })
    .catch(function() { window.__sheetError = true; });
  if (document.images.length === 0) { window.__sheetReady = true; }
</script>
</body>
</html>`

var tmpl = template.Must(template.New("sheet").Parse(docTemplate))

type docStrip struct {
	Left, Top, Width, Height float64
	BandH                    float64
	Rotation                 float64
	Backing                  template.URL
	Sprockets                template.URL
	Frames                   []docFrame
}

type docFrame struct {
	Left, Top, Width, Height float64
	IdxLeft, IdxTop          float64
	Number                   int
	Src                      template.URL
}

type docBox struct {
	Left, Top, Width, Height float64
	Src                      template.URL
}

type docSticker struct {
	Left, Top, Width, Height float64
	Rotation                 float64
	IsText                   bool
	Text                     string
	Color                    string
	TapeOffset               float64
	Src                      template.URL
}

type docModel struct {
	CanvasW, CanvasH float64
	Rotation         float64
	Strips           []docStrip
	Highlights       []docBox
	Crosses          []string
	Stickers         []docSticker
}

// Document builds the standalone HTML for a snapshot at scale 1. The DPI
// scale is applied by the capture viewport, not the document, so the
// document's geometry matches the editor's unscaled canvas exactly.
func Document(lib *assets.Library, snap sheet.Snapshot, rotation float64) (string, error) {
	if err := snap.Validate(); err != nil {
		return "", err
	}
	stock, err := sheet.StockByID(snap.FilmStock)
	if err != nil {
		return "", fmt.Errorf("%w: %v", sheet.ErrMalformed, err)
	}

	frames := snap.OrderedFrames()
	layout := geometry.For(len(frames), 1)

	m := docModel{
		CanvasW:  layout.CanvasWidth,
		CanvasH:  layout.CanvasHeight,
		Rotation: rotation,
	}

	backing, err := assetURI(lib, func() ([]byte, error) { return lib.Stock(stock.ID, "frame.png") })
	if err != nil {
		return "", fmt.Errorf("stock %s backing: %w", stock.ID, err)
	}
	sprockets, err := assetURI(lib, func() ([]byte, error) { return lib.Stock(stock.ID, "sprockets.png") })
	if err != nil {
		return "", fmt.Errorf("stock %s sprockets: %w", stock.ID, err)
	}

	for si, stripRect := range layout.Strips {
		ds := docStrip{
			Left:      stripRect.Left,
			Top:       stripRect.Top,
			Width:     stripRect.Width,
			Height:    stripRect.Height,
			BandH:     (geometry.StripHeight - geometry.FrameHeight) / 2 * 0.6,
			Rotation:  jitter.StripRotation(si),
			Backing:   backing,
			Sprockets: sprockets,
		}
		n := geometry.FramesInStrip(si, layout.FrameCount)
		for j := 0; j < n; j++ {
			frameIndex := si*geometry.FramesPerStrip + j
			f := frames[frameIndex]
			rect := geometry.FrameRectInStrip(j, 1)

			photo, err := lib.Resolve(f.ImageRef)
			if err != nil {
				return "", fmt.Errorf("frame %d: %w", frameIndex+1, err)
			}
			ds.Frames = append(ds.Frames, docFrame{
				Left:    rect.Left,
				Top:     rect.Top,
				Width:   rect.Width,
				Height:  rect.Height,
				IdxLeft: rect.Left + 4,
				IdxTop:  rect.Bottom() + 2,
				Number:  frameIndex + 1,
				Src:     template.URL(assets.DataURI(sniffMIME(photo), photo)),
			})
		}
		m.Strips = append(m.Strips, ds)
	}

	for i, f := range frames {
		rect, ok := layout.FrameRect(i)
		if !ok {
			continue
		}
		box := rect.Outset(overlay.Margin)
		for _, kind := range []sheet.HighlightKind{sheet.HighlightRectangle, sheet.HighlightCircle, sheet.HighlightScribble} {
			if !f.Highlights.Get(kind) {
				continue
			}
			uri, err := assetURI(lib, func() ([]byte, error) { return lib.Highlight(kind) })
			if err != nil {
				return "", fmt.Errorf("frame %d highlight %s: %w", i+1, kind, err)
			}
			m.Highlights = append(m.Highlights, docBox{Left: box.Left, Top: box.Top, Width: box.Width, Height: box.Height, Src: uri})
		}
		if f.Highlights.Cross {
			for _, stroke := range overlay.Cross(rect, i+1) {
				m.Crosses = append(m.Crosses, stroke.SVG())
			}
		}
	}

	for i, st := range snap.OrderedStickers() {
		cfg := sheet.StickerConfigs[st.Kind]
		ds := docSticker{
			Left:     st.Left,
			Top:      st.Top,
			Width:    cfg.Width,
			Height:   cfg.Height,
			Rotation: cfg.Rotation,
		}
		if st.Kind == sheet.StickerText {
			ds.IsText = true
			ds.Text = st.Text
			ds.Color = textColor(st.Color)
			ds.TapeOffset = tapeOffset(i)
		} else {
			uri, err := assetURI(lib, func() ([]byte, error) { return lib.Sticker(st.Kind) })
			if err != nil {
				return "", fmt.Errorf("sticker %s: %w", st.ID, err)
			}
			ds.Src = uri
		}
		m.Stickers = append(m.Stickers, ds)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, m); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return b.String(), nil
}

// tapeOffset is the tick-pattern start for a text sticker's tape, the
// deterministic repeat offset folded into [0, 24) so the CSS background
// lands where the compositor's ticks land.
func tapeOffset(orderIndex int) float64 {
	off := math.Mod(jitter.TextRepeatOffset(orderIndex), 24)
	if off < 0 {
		off += 24
	}
	return off
}

func assetURI(lib *assets.Library, load func() ([]byte, error)) (template.URL, error) {
	b, err := load()
	if err != nil {
		return "", err
	}
	return template.URL(assets.DataURI(sniffMIME(b), b)), nil
}

func sniffMIME(b []byte) string {
	mime := http.DetectContentType(b)
	if !strings.HasPrefix(mime, "image/") {
		return "application/octet-stream"
	}
	return mime
}

// textColor passes through safe hex colors only; anything else falls back
// to near-black so payload text cannot inject styles.
func textColor(c string) string {
	if len(c) == 7 && c[0] == '#' {
		ok := true
		for _, r := range c[1:] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				ok = false
				break
			}
		}
		if ok {
			return c
		}
	}
	return "#1e1e1e"
}
