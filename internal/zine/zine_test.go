package zine

import (
	"reflect"
	"testing"
)

func TestTemplatesStayOnPage(t *testing.T) {
	for _, tpl := range Templates {
		for i, slot := range tpl.Slots {
			if slot.Rect.Left < 0 || slot.Rect.Top < 0 ||
				slot.Rect.Right() > PageWidth || slot.Rect.Bottom() > PageHeight {
				t.Errorf("%s slot %d escapes the page: %+v", tpl.Name, i, slot.Rect)
			}
			if slot.Aspect <= 0 {
				t.Errorf("%s slot %d has non-positive aspect", tpl.Name, i)
			}
		}
	}
}

func TestAssignPrefersMatchingAspect(t *testing.T) {
	tpl, ok := TemplateByName("spread")
	if !ok {
		t.Fatal("spread template missing")
	}
	// An image near the big slot's ratio should take it; a 4:3 image
	// matches a side slot exactly.
	got := Assign(tpl, [][2]int{{1200, 1000}, {400, 300}})
	want := []Placement{
		{ImageIndex: 0, SlotIndex: 0},
		{ImageIndex: 1, SlotIndex: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Assign = %+v, want %+v", got, want)
	}
}

func TestAssignDeterministic(t *testing.T) {
	tpl, _ := TemplateByName("grid")
	sizes := [][2]int{{300, 200}, {200, 300}, {500, 500}, {1000, 400}}
	first := Assign(tpl, sizes)
	for i := 0; i < 5; i++ {
		if got := Assign(tpl, sizes); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestAssignExhaustsSlots(t *testing.T) {
	tpl, _ := TemplateByName("column")
	sizes := [][2]int{{100, 200}, {100, 200}, {100, 200}, {100, 200}, {100, 200}}
	got := Assign(tpl, sizes)
	if len(got) != len(tpl.Slots) {
		t.Fatalf("placed %d images, want %d", len(got), len(tpl.Slots))
	}
	seen := map[int]bool{}
	for _, p := range got {
		if seen[p.SlotIndex] {
			t.Fatalf("slot %d assigned twice", p.SlotIndex)
		}
		seen[p.SlotIndex] = true
	}
}

func TestAssignSkipsDegenerateSizes(t *testing.T) {
	tpl, _ := TemplateByName("spread")
	got := Assign(tpl, [][2]int{{0, 100}, {200, 150}})
	if len(got) != 1 || got[0].ImageIndex != 1 {
		t.Fatalf("Assign = %+v, want single placement of image 1", got)
	}
}

func TestFitRectCentersAndPreservesAspect(t *testing.T) {
	s := Templates[0].Slots[0] // 760x640
	r := FitRect(s, 1600, 900) // wide image, width-bound
	if r.Width != 760 {
		t.Fatalf("fitted width = %v, want 760", r.Width)
	}
	wantH := 760.0 * 900 / 1600
	if diff := r.Height - wantH; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("fitted height = %v, want %v", r.Height, wantH)
	}
	if r.Left != s.Rect.Left {
		t.Fatalf("left = %v, want flush at %v", r.Left, s.Rect.Left)
	}
	wantTop := s.Rect.Top + (s.Rect.Height-wantH)/2
	if diff := r.Top - wantTop; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("top = %v, want centered at %v", r.Top, wantTop)
	}
}
