package sheet

import "testing"

func consistent(t *testing.T, s *Store) {
	t.Helper()
	order := s.FrameOrder()
	if len(order) != len(s.frames) {
		t.Fatalf("frame order has %d ids, map has %d", len(order), len(s.frames))
	}
	for _, id := range order {
		if _, ok := s.frames[id]; !ok {
			t.Fatalf("frame order id %q missing from map", id)
		}
	}
	sOrder := s.StickerOrder()
	if len(sOrder) != len(s.stickers) {
		t.Fatalf("sticker order has %d ids, map has %d", len(sOrder), len(s.stickers))
	}
	for _, id := range sOrder {
		if _, ok := s.stickers[id]; !ok {
			t.Fatalf("sticker order id %q missing from map", id)
		}
	}
}

func TestToggleHighlightIdempotentPair(t *testing.T) {
	s := NewStore()
	id := s.AddFrame("roll/01.jpg")

	s.ToggleHighlight(id, HighlightCross)
	s.ToggleHighlight(id, HighlightCross)
	f, _ := s.Frame(id)
	if f.Highlights.Cross {
		t.Error("double toggle left cross flag set")
	}

	s.ToggleHighlight(id, HighlightCircle)
	f, _ = s.Frame(id)
	if !f.Highlights.Circle {
		t.Error("single toggle did not set circle flag")
	}

	// Highlights are independent: circle stays set while cross toggles.
	s.ToggleHighlight(id, HighlightCross)
	f, _ = s.Frame(id)
	if !f.Highlights.Circle || !f.Highlights.Cross {
		t.Error("flags are not independent")
	}
}

func TestToggleHighlightMissingFrame(t *testing.T) {
	s := NewStore()
	s.ToggleHighlight("nope", HighlightRectangle) // must not panic
	consistent(t, s)
}

func TestDeleteFrameShiftsNumbers(t *testing.T) {
	s := NewStore()
	a := s.AddFrame("a.jpg")
	b := s.AddFrame("b.jpg")
	c := s.AddFrame("c.jpg")
	_ = a

	s.DeleteFrame(1)
	consistent(t, s)

	order := s.FrameOrder()
	if len(order) != 2 || order[0] != b || order[1] != c {
		t.Fatalf("order after delete = %v, want [%s %s]", order, b, c)
	}
	if id, ok := s.FrameIDAt(1); !ok || id != b {
		t.Errorf("frame number 1 = %q, want %q", id, b)
	}

	released := s.DrainReleased()
	if len(released) != 1 || released[0] != "a.jpg" {
		t.Errorf("released = %v, want [a.jpg]", released)
	}
	// Exactly once.
	if again := s.DrainReleased(); len(again) != 0 {
		t.Errorf("second drain returned %v", again)
	}
}

func TestDeleteFrameOutOfRange(t *testing.T) {
	s := NewStore()
	s.AddFrame("a.jpg")
	s.DeleteFrame(0)
	s.DeleteFrame(2)
	if s.FrameCount() != 1 {
		t.Errorf("out-of-range delete changed frame count to %d", s.FrameCount())
	}
}

func TestStickerLifecycle(t *testing.T) {
	s := NewStore()
	for i := 0; i < 7; i++ {
		s.AddFrame("x.jpg")
	}

	id := s.PlaceSticker(StickerDot, 100, 120)
	consistent(t, s)

	s.MoveSticker(id, -50, -50)
	st, _ := s.Sticker(id)
	if st.Left != 0 || st.Top != 0 {
		t.Errorf("move did not clamp: (%v, %v)", st.Left, st.Top)
	}

	s.MoveSticker("gone", 10, 10) // stale id, no-op
	s.RemoveSticker("gone")       // stale id, no-op
	consistent(t, s)

	s.RemoveSticker(id)
	consistent(t, s)
	if _, ok := s.Sticker(id); ok {
		t.Error("sticker survived removal")
	}
}

func TestStickersSurviveFrameDeletion(t *testing.T) {
	s := NewStore()
	s.AddFrame("a.jpg")
	s.AddFrame("b.jpg")
	id := s.PlaceSticker(StickerTwinCheck, 60, 60)

	s.DeleteFrame(2)
	if _, ok := s.Sticker(id); !ok {
		t.Error("frame deletion removed an independent sticker")
	}
	consistent(t, s)
}

func TestCommitText(t *testing.T) {
	s := NewStore()
	txt := s.PlaceSticker(StickerText, 10, 10)
	dot := s.PlaceSticker(StickerDot, 10, 10)

	s.CommitText(txt, "PRINT THIS")
	s.CommitText(dot, "ignored")
	s.CommitText("gone", "ignored")

	st, _ := s.Sticker(txt)
	if st.Text != "PRINT THIS" {
		t.Errorf("text = %q", st.Text)
	}
	d, _ := s.Sticker(dot)
	if d.Text != "" {
		t.Errorf("non-text sticker accepted text %q", d.Text)
	}
}

func TestMutationSequenceConsistency(t *testing.T) {
	s := NewStore()
	var stickerIDs []string
	for i := 0; i < 20; i++ {
		s.AddFrame("f.jpg")
		stickerIDs = append(stickerIDs, s.PlaceSticker(StickerDot, float64(i)*10, 5))
	}
	for i := 0; i < 10; i++ {
		s.DeleteFrame(1)
		s.RemoveSticker(stickerIDs[i])
		consistent(t, s)
	}
	if s.FrameCount() != 10 || len(s.StickerOrder()) != 10 {
		t.Errorf("counts after interleaved mutations: frames=%d stickers=%d", s.FrameCount(), len(s.StickerOrder()))
	}
}

func TestClearReleasesRefs(t *testing.T) {
	s := NewStore()
	s.AddFrame("a.jpg")
	s.AddFrame("b.jpg")
	s.Clear()
	if got := len(s.DrainReleased()); got != 2 {
		t.Errorf("Clear released %d refs, want 2", got)
	}
	consistent(t, s)
}
