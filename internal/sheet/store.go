package sheet

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/filmstriplab/filmstrip/internal/geometry"
)

// Store owns the canonical frame and sticker state. It has a single
// writer — the editor's event handlers — and read-only consumers (layout,
// overlays, export snapshots). Mutations with stale or missing ids degrade
// to no-ops; they must never panic into the caller's event loop.
type Store struct {
	frames     map[string]*Frame
	frameOrder []string

	stickers     map[string]*Sticker
	stickerOrder []string

	stock FilmStock
	scale float64

	// released collects ImageRefs whose backing resources should be
	// revoked by the surface that created them. Each ref is reported
	// exactly once.
	released []string
}

// NewStore returns an empty store at scale 1 with the default film stock.
func NewStore() *Store {
	stock, _ := StockByID(DefaultStockID)
	return &Store{
		frames:   map[string]*Frame{},
		stickers: map[string]*Sticker{},
		stock:    stock,
		scale:    1,
	}
}

// SetScale sets the canvas pixel scale used for sticker clamping.
func (s *Store) SetScale(scale float64) {
	if scale > 0 {
		s.scale = scale
	}
}

// Scale returns the current canvas pixel scale.
func (s *Store) Scale() float64 { return s.scale }

// SetStock selects the sheet-wide film stock.
func (s *Store) SetStock(id string) error {
	stock, err := StockByID(id)
	if err != nil {
		return err
	}
	s.stock = stock
	return nil
}

// Stock returns the selected film stock.
func (s *Store) Stock() FilmStock { return s.stock }

// FrameCount returns the number of frames in order.
func (s *Store) FrameCount() int { return len(s.frameOrder) }

// Layout returns the current pixel layout.
func (s *Store) Layout() geometry.Layout {
	return geometry.For(len(s.frameOrder), s.scale)
}

// AddFrame appends a frame for imageRef and returns its id.
func (s *Store) AddFrame(imageRef string) string {
	f := &Frame{ID: uuid.NewString(), ImageRef: imageRef}
	s.frames[f.ID] = f
	s.frameOrder = append(s.frameOrder, f.ID)
	return f.ID
}

// Frame returns the frame with the given id.
func (s *Store) Frame(id string) (*Frame, bool) {
	f, ok := s.frames[id]
	return f, ok
}

// FrameIDAt returns the frame id at the 1-based frame number.
func (s *Store) FrameIDAt(frameNumber int) (string, bool) {
	if frameNumber < 1 || frameNumber > len(s.frameOrder) {
		return "", false
	}
	return s.frameOrder[frameNumber-1], true
}

// FrameOrder returns a copy of the ordered frame ids.
func (s *Store) FrameOrder() []string {
	out := make([]string, len(s.frameOrder))
	copy(out, s.frameOrder)
	return out
}

// ToggleHighlight flips one highlight flag on the identified frame. A
// missing frame id or unknown kind is a no-op.
func (s *Store) ToggleHighlight(frameID string, kind HighlightKind) {
	f, ok := s.frames[frameID]
	if !ok {
		log.Debug().Str("frame", frameID).Msg("toggle on missing frame ignored")
		return
	}
	if !f.Highlights.Toggle(kind) {
		log.Debug().Str("kind", string(kind)).Msg("unknown highlight kind ignored")
	}
}

// DeleteFrame removes the frame at the 1-based frameNumber. Frame numbers
// above it shift down by one; stickers are untouched. The removed frame's
// ImageRef is queued for release.
func (s *Store) DeleteFrame(frameNumber int) {
	id, ok := s.FrameIDAt(frameNumber)
	if !ok {
		return
	}
	f := s.frames[id]
	delete(s.frames, id)
	s.frameOrder = append(s.frameOrder[:frameNumber-1], s.frameOrder[frameNumber:]...)
	if f != nil && f.ImageRef != "" {
		s.released = append(s.released, f.ImageRef)
	}
}

// PlaceSticker allocates a new sticker of kind at (left, top), clamped to
// the canvas, and returns its id.
func (s *Store) PlaceSticker(kind StickerKind, left, top float64) string {
	st := &Sticker{ID: uuid.NewString(), Kind: kind, Left: left, Top: top}
	w, h := st.Size()
	st.Left, st.Top = s.Layout().ClampSticker(left, top, w, h)
	s.stickers[st.ID] = st
	s.stickerOrder = append(s.stickerOrder, st.ID)
	return st.ID
}

// Sticker returns the sticker with the given id.
func (s *Store) Sticker(id string) (*Sticker, bool) {
	st, ok := s.stickers[id]
	return st, ok
}

// StickerOrder returns a copy of the ordered sticker ids (paint order).
func (s *Store) StickerOrder() []string {
	out := make([]string, len(s.stickerOrder))
	copy(out, s.stickerOrder)
	return out
}

// MoveSticker commits a new clamped position for the sticker. Missing ids
// are ignored.
func (s *Store) MoveSticker(id string, left, top float64) {
	st, ok := s.stickers[id]
	if !ok {
		return
	}
	w, h := st.Size()
	st.Left, st.Top = s.Layout().ClampSticker(left, top, w, h)
}

// RemoveSticker removes the sticker from both the map and the order.
func (s *Store) RemoveSticker(id string) {
	if _, ok := s.stickers[id]; !ok {
		return
	}
	delete(s.stickers, id)
	for i, sid := range s.stickerOrder {
		if sid == id {
			s.stickerOrder = append(s.stickerOrder[:i], s.stickerOrder[i+1:]...)
			break
		}
	}
}

// CommitText sets the text of a text sticker. Non-text stickers and
// missing ids are ignored.
func (s *Store) CommitText(id, text string) {
	st, ok := s.stickers[id]
	if !ok || st.Kind != StickerText {
		return
	}
	st.Text = text
}

// DrainReleased returns the image refs queued for release since the last
// call and clears the queue. Each ref appears exactly once across the
// lifetime of the store.
func (s *Store) DrainReleased() []string {
	out := s.released
	s.released = nil
	return out
}

// Clear removes all frames and stickers, queueing every frame ImageRef
// for release.
func (s *Store) Clear() {
	for _, id := range s.frameOrder {
		if f := s.frames[id]; f != nil && f.ImageRef != "" {
			s.released = append(s.released, f.ImageRef)
		}
	}
	s.frames = map[string]*Frame{}
	s.frameOrder = nil
	s.stickers = map[string]*Sticker{}
	s.stickerOrder = nil
}
