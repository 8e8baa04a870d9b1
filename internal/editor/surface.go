// Package editor is the headless core of the interactive contact-sheet
// surface: the per-tool state machine, sticker focus and drag lifecycle,
// in-place text editing, and the loupe magnifier model.
//
// The package renders nothing itself. A host surface feeds it canvas-local
// input events through an InputPort and reads back the store, the focus
// state, and the loupe transform to paint. Every mutation path tolerates
// stale ids: a sticker deleted elsewhere mid-drag degrades to a no-op.
package editor

import (
	"math"

	"github.com/rs/zerolog/log"

	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// Options configures interaction thresholds. The tolerances are small by
// design; they decide click-versus-drag, so they are configuration rather
// than literals.
type Options struct {
	// PlaceCancelTolerance is the maximum pointer travel, in pixels, for a
	// release on a freshly placed sticker to count as a cancelled
	// placement.
	PlaceCancelTolerance float64
	// DragStartTolerance is the pointer travel beyond which a press on a
	// focused sticker becomes a drag.
	DragStartTolerance float64
	// LoupeMargin is the tolerance band around the canvas within which the
	// loupe stays visible.
	LoupeMargin float64
	// LoupeZoom is the loupe magnification factor.
	LoupeZoom float64
	// LoupeDiameter is the loupe circle diameter in pixels.
	LoupeDiameter float64
	// TouchDevice disables the loupe entirely.
	TouchDevice bool
	// ReadOnly puts the surface in render-only mode: all input is ignored.
	// The loupe's inner clone renders with this flag set instead of
	// instantiating a second interactive surface.
	ReadOnly bool
}

// DefaultOptions returns the standard interaction thresholds.
func DefaultOptions() Options {
	return Options{
		PlaceCancelTolerance: 3,
		DragStartTolerance:   3,
		LoupeMargin:          24,
		LoupeZoom:            2.5,
		LoupeDiameter:        180,
	}
}

// LoupeState is the magnifier transform a host applies to the sheet clone.
// The clone is translated by (OffsetX, OffsetY) and scaled by Zoom so the
// content inside the circle matches the true content under the cursor.
type LoupeState struct {
	Visible  bool
	CenterX  float64
	CenterY  float64
	Zoom     float64
	Diameter float64
	OffsetX  float64
	OffsetY  float64
}

// dragSession tracks one drag gesture from pointer-down to pointer-up. It
// owns the draft position during the gesture; the store only sees the
// final commit.
type dragSession struct {
	stickerID string
	newlyPlaced bool

	startX, startY float64
	// grab offset from the sticker's top-left to the press point, so the
	// sticker does not jump under the cursor.
	grabDX, grabDY float64

	draftLeft, draftTop float64
	moved               bool
}

// Surface is the headless editor state machine over one Store.
type Surface struct {
	store *sheet.Store
	opts  Options

	tool    Tool
	focused string
	// focusedNew marks a sticker placed in the current focus cycle;
	// releasing it without movement cancels the placement.
	focusedNew bool

	drag *dragSession

	editing  string
	editText string
	// editSelectAll tells the host to select the full text when entering
	// edit mode.
	editSelectAll bool

	loupe LoupeState
}

// New returns a surface over store with the given options.
func New(store *sheet.Store, opts Options) *Surface {
	if opts.LoupeZoom <= 1 {
		opts.LoupeZoom = DefaultOptions().LoupeZoom
	}
	return &Surface{store: store, opts: opts, tool: ToolNone}
}

// Store exposes the underlying state for rendering.
func (s *Surface) Store() *sheet.Store { return s.store }

// Tool returns the active tool.
func (s *Surface) Tool() Tool { return s.tool }

// Focused returns the id of the focused sticker, if any.
func (s *Surface) Focused() (string, bool) { return s.focused, s.focused != "" }

// Loupe returns the current loupe state.
func (s *Surface) Loupe() LoupeState { return s.loupe }

// Editing returns the sticker id in text-edit mode, the working text, and
// whether the host should select all of it.
func (s *Surface) Editing() (id, text string, selectAll bool) {
	return s.editing, s.editText, s.editSelectAll
}

// SetTool switches the active tool. Leaving the loupe hides it
// immediately; switching to a tool that does not match the focused
// sticker's kind clears focus.
func (s *Surface) SetTool(t Tool) {
	if s.opts.ReadOnly {
		return
	}
	if s.tool == t {
		return
	}
	if t != ToolLoupe {
		s.loupe = LoupeState{}
	}
	if s.focused != "" {
		kind, places := t.StickerKind()
		st, ok := s.store.Sticker(s.focused)
		if !ok || !places || st.Kind != kind {
			s.clearFocus()
		}
	}
	s.tool = t
}

// HandlePointer runs one pointer event through the state machine.
func (s *Surface) HandlePointer(ev PointerEvent) {
	if s.opts.ReadOnly {
		return
	}
	switch ev.Kind {
	case PointerDown:
		s.pointerDown(ev)
	case PointerMove:
		s.pointerMove(ev)
	case PointerUp:
		s.pointerUp(ev)
	case PointerCancel:
		// Discard the gesture without committing the draft.
		s.drag = nil
	}
}

// HandleKey commits or cancels in-place text editing. Enter and Escape
// both commit without inserting a newline.
func (s *Surface) HandleKey(ev KeyEvent) {
	if s.opts.ReadOnly || s.editing == "" {
		return
	}
	switch ev.Key {
	case KeyEnter, KeyEscape:
		s.CommitTextEdit()
	}
}

func (s *Surface) pointerDown(ev PointerEvent) {
	if kind, ok := s.tool.HighlightKind(); ok {
		if idx, hit := s.store.Layout().FrameAt(ev.X, ev.Y); hit {
			if id, ok := s.store.FrameIDAt(idx + 1); ok {
				s.store.ToggleHighlight(id, kind)
			}
		}
		return
	}

	switch s.tool {
	case ToolDelete:
		if idx, hit := s.store.Layout().FrameAt(ev.X, ev.Y); hit {
			s.store.DeleteFrame(idx + 1)
		}
		return
	case ToolLoupe:
		s.updateLoupe(ev.X, ev.Y)
		return
	}

	kind, places := s.tool.StickerKind()
	if !places {
		return
	}

	if hitID, ok := s.stickerAt(ev.X, ev.Y); ok {
		if hitID == s.focused {
			if ev.Clicks >= 2 {
				s.beginTextEdit(hitID)
				return
			}
			s.beginDrag(hitID, ev, false)
			return
		}
		// Direct focus transfer, no intermediate unfocus frame.
		s.focusSticker(hitID, false)
		return
	}

	// Empty canvas.
	if s.focused != "" {
		// One-shot placement per focus cycle: a click with something
		// focused only unfocuses.
		s.clearFocus()
		return
	}

	cfg := sheet.StickerConfigs[kind]
	id := s.store.PlaceSticker(kind, ev.X-cfg.Width/2, ev.Y-cfg.Height/2)
	s.focusSticker(id, true)
	s.beginDrag(id, ev, true)
	if kind == sheet.StickerText {
		s.beginTextEdit(id)
	}
}

func (s *Surface) pointerMove(ev PointerEvent) {
	if s.tool == ToolLoupe {
		s.updateLoupe(ev.X, ev.Y)
		return
	}
	d := s.drag
	if d == nil {
		return
	}
	if !d.moved && dist(ev.X, ev.Y, d.startX, d.startY) > s.opts.DragStartTolerance {
		d.moved = true
	}
	// Only the latest position matters; intermediate drafts are dropped.
	d.draftLeft = ev.X - d.grabDX
	d.draftTop = ev.Y - d.grabDY
}

func (s *Surface) pointerUp(ev PointerEvent) {
	d := s.drag
	if d == nil {
		return
	}
	s.drag = nil

	if _, ok := s.store.Sticker(d.stickerID); !ok {
		// Deleted by another path mid-drag.
		log.Debug().Str("sticker", d.stickerID).Msg("drag target vanished")
		if s.focused == d.stickerID {
			s.focused = ""
			s.focusedNew = false
		}
		return
	}

	travel := dist(ev.X, ev.Y, d.startX, d.startY)
	if d.moved || travel > s.opts.PlaceCancelTolerance {
		s.store.MoveSticker(d.stickerID, ev.X-d.grabDX, ev.Y-d.grabDY)
		// Any real movement commits a fresh placement.
		s.focusedNew = false
		return
	}

	if d.newlyPlaced && s.focusedNew && s.matchesTool(d.stickerID) {
		// A click that never turned into a drag cancels the placement.
		if s.editing == d.stickerID {
			s.editing = ""
			s.editText = ""
		}
		s.store.RemoveSticker(d.stickerID)
		s.focused = ""
		s.focusedNew = false
	}
}

// DragDraft returns the in-flight draft position of the dragged sticker.
// Hosts render the draft; the authoritative store updates only on commit.
func (s *Surface) DragDraft() (id string, left, top float64, ok bool) {
	if s.drag == nil || !s.drag.moved {
		return "", 0, 0, false
	}
	return s.drag.stickerID, s.drag.draftLeft, s.drag.draftTop, true
}

func (s *Surface) beginDrag(id string, ev PointerEvent, newlyPlaced bool) {
	st, ok := s.store.Sticker(id)
	if !ok {
		return
	}
	s.drag = &dragSession{
		stickerID:   id,
		newlyPlaced: newlyPlaced,
		startX:      ev.X,
		startY:      ev.Y,
		grabDX:      ev.X - st.Left,
		grabDY:      ev.Y - st.Top,
		draftLeft:   st.Left,
		draftTop:    st.Top,
	}
}

func (s *Surface) focusSticker(id string, fresh bool) {
	s.focused = id
	s.focusedNew = fresh
}

func (s *Surface) clearFocus() {
	if s.editing != "" {
		s.CommitTextEdit()
	}
	s.focused = ""
	s.focusedNew = false
}

func (s *Surface) matchesTool(id string) bool {
	st, ok := s.store.Sticker(id)
	if !ok {
		return false
	}
	kind, places := s.tool.StickerKind()
	return places && st.Kind == kind
}

func (s *Surface) beginTextEdit(id string) {
	st, ok := s.store.Sticker(id)
	if !ok || st.Kind != sheet.StickerText {
		return
	}
	s.editing = id
	s.editText = st.Text
	s.editSelectAll = st.Text != ""
}

// SetEditText updates the working text while editing.
func (s *Surface) SetEditText(text string) {
	if s.editing == "" {
		return
	}
	s.editText = text
	s.editSelectAll = false
}

// CommitTextEdit writes the working text to the sticker and leaves edit
// mode. Hosts call this on blur.
func (s *Surface) CommitTextEdit() {
	if s.editing == "" {
		return
	}
	s.store.CommitText(s.editing, s.editText)
	s.editing = ""
	s.editText = ""
	s.editSelectAll = false
}

func (s *Surface) updateLoupe(x, y float64) {
	if s.opts.TouchDevice {
		return
	}
	l := s.store.Layout()
	m := s.opts.LoupeMargin
	if x < -m || y < -m || x > l.CanvasWidth+m || y > l.CanvasHeight+m {
		s.loupe = LoupeState{}
		return
	}
	z := s.opts.LoupeZoom
	s.loupe = LoupeState{
		Visible:  true,
		CenterX:  x,
		CenterY:  y,
		Zoom:     z,
		Diameter: s.opts.LoupeDiameter,
		// Translate so the magnified point under the cursor stays put:
		// offset + z*p = p.
		OffsetX: x - z*x,
		OffsetY: y - z*y,
	}
}

// stickerAt returns the topmost sticker containing (x, y).
func (s *Surface) stickerAt(x, y float64) (string, bool) {
	order := s.store.StickerOrder()
	for i := len(order) - 1; i >= 0; i-- {
		st, ok := s.store.Sticker(order[i])
		if !ok {
			continue
		}
		w, h := st.Size()
		if x >= st.Left && x < st.Left+w && y >= st.Top && y < st.Top+h {
			return st.ID, true
		}
	}
	return "", false
}

func dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x1-x2, y1-y2)
}
