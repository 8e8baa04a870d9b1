package browser

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/geometry"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// DecodeWait bounds how long the renderer waits for every image in the
// document to decode before failing the export.
const DecodeWait = 20 * time.Second

// Options controls one capture.
type Options struct {
	// Scale is the device scale factor of the capture viewport.
	Scale float64
	// Rotation is the whole-sheet rotation in degrees.
	Rotation float64
	// ExecPath overrides the Chrome binary location.
	ExecPath string
}

// Renderer captures sheet documents with headless Chrome.
type Renderer struct {
	lib *assets.Library
}

// New returns a renderer over lib.
func New(lib *assets.Library) *Renderer {
	return &Renderer{lib: lib}
}

// Render builds the standalone document for the snapshot and screenshots
// the sheet element. The returned bytes are PNG. The caller's context
// bounds the whole capture; asset decode failures inside the page fail
// the export rather than producing a partial image.
func (r *Renderer) Render(ctx context.Context, snap sheet.Snapshot, opts Options) ([]byte, error) {
	html, err := Document(r.lib, snap, opts.Rotation)
	if err != nil {
		return nil, err
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	layout := geometry.For(len(snap.FrameOrder), 1)
	vw := int64(math.Ceil(layout.CanvasWidth))
	vh := int64(math.Ceil(layout.CanvasHeight))

	allocOpts := chromedp.DefaultExecAllocatorOptions[:]
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	start := time.Now()
	var shot []byte
	var ready bool
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(vw, vh, chromedp.EmulateScale(scale)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.Poll("window.__sheetReady === true || window.__sheetError === true", &ready,
			chromedp.WithPollingTimeout(DecodeWait)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var failed bool
			if err := chromedp.Evaluate("window.__sheetError === true", &failed).Do(ctx); err != nil {
				return err
			}
			if failed {
				return fmt.Errorf("%w: image decode failed in capture page", assets.ErrNotFound)
			}
			return nil
		}),
		chromedp.Screenshot("#sheet", &shot, chromedp.NodeVisible),
	)
	if err != nil {
		return nil, fmt.Errorf("browser capture: %w", err)
	}
	log.Debug().
		Int("frames", len(snap.FrameOrder)).
		Dur("elapsed", time.Since(start)).
		Int("bytes", len(shot)).
		Msg("browser capture complete")
	return shot, nil
}
