package sheet

import (
	"errors"
	"fmt"
)

// Snapshot is the deep, immutable serialization of a sheet — the sole
// input the export renderers receive. It carries no client-side object
// identity: every ImageRef must already be a data URI or a server-side
// asset filename.
type Snapshot struct {
	Frames       map[string]Frame   `json:"frames"`
	FrameOrder   []string           `json:"frameOrder"`
	Stickers     map[string]Sticker `json:"stickers,omitempty"`
	StickerOrder []string           `json:"stickerOrder,omitempty"`
	FilmStock    string             `json:"filmStock,omitempty"`
	Rotation     float64            `json:"rotation,omitempty"`
	Scale        float64            `json:"scale,omitempty"`
}

// ErrMalformed marks structurally invalid snapshots (missing required
// collections, orphaned order entries). Handlers map it to a client error.
var ErrMalformed = errors.New("malformed sheet state")

// Validate checks the structural invariants a renderer relies on.
func (s *Snapshot) Validate() error {
	if s.Frames == nil {
		return fmt.Errorf("%w: missing frames", ErrMalformed)
	}
	if s.FrameOrder == nil {
		return fmt.Errorf("%w: missing frameOrder", ErrMalformed)
	}
	for _, id := range s.FrameOrder {
		if _, ok := s.Frames[id]; !ok {
			return fmt.Errorf("%w: frameOrder references unknown frame %q", ErrMalformed, id)
		}
	}
	for _, id := range s.StickerOrder {
		if _, ok := s.Stickers[id]; !ok {
			return fmt.Errorf("%w: stickerOrder references unknown sticker %q", ErrMalformed, id)
		}
	}
	if _, err := StockByID(s.FilmStock); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// OrderedFrames returns the frames in display order.
func (s *Snapshot) OrderedFrames() []Frame {
	out := make([]Frame, 0, len(s.FrameOrder))
	for _, id := range s.FrameOrder {
		out = append(out, s.Frames[id])
	}
	return out
}

// OrderedStickers returns the stickers in paint order.
func (s *Snapshot) OrderedStickers() []Sticker {
	out := make([]Sticker, 0, len(s.StickerOrder))
	for _, id := range s.StickerOrder {
		out = append(out, s.Stickers[id])
	}
	return out
}

// Snapshot deep-copies the store's current state for export.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Frames:       make(map[string]Frame, len(s.frames)),
		FrameOrder:   append([]string(nil), s.frameOrder...),
		Stickers:     make(map[string]Sticker, len(s.stickers)),
		StickerOrder: append([]string(nil), s.stickerOrder...),
		FilmStock:    s.stock.ID,
		Scale:        s.scale,
	}
	for id, f := range s.frames {
		snap.Frames[id] = *f
	}
	for id, st := range s.stickers {
		snap.Stickers[id] = *st
	}
	return snap
}
