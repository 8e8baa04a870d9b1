package imaging

import (
	"image"
	"image/color"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 40, A: 255})
		}
	}
	return img
}

func TestFit(t *testing.T) {
	tests := []struct {
		w, h    int
		maxDim  int
		wantW   int
		wantH   int
	}{
		{4000, 2000, 2048, 2048, 1024},
		{2000, 4000, 2048, 1024, 2048},
		{800, 600, 2048, 800, 600}, // already in bounds, untouched
		{5000, 10, 100, 100, 1},
	}
	for _, tt := range tests {
		got := Fit(testImage(tt.w, tt.h), tt.maxDim)
		b := got.Bounds()
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("Fit(%dx%d, %d) = %dx%d, want %dx%d",
				tt.w, tt.h, tt.maxDim, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	src := testImage(64, 48)

	jb, err := EncodeJPEG(src, 85)
	if err != nil {
		t.Fatal(err)
	}
	img, format, err := Decode(jb)
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" || img.Bounds().Dx() != 64 {
		t.Errorf("jpeg roundtrip: format=%s bounds=%v", format, img.Bounds())
	}

	pb, err := EncodePNG(src)
	if err != nil {
		t.Fatal(err)
	}
	if _, format, err = Decode(pb); err != nil || format != "png" {
		t.Errorf("png roundtrip: format=%s err=%v", format, err)
	}
}

func TestThumbnail(t *testing.T) {
	pb, err := EncodePNG(testImage(1200, 900))
	if err != nil {
		t.Fatal(err)
	}
	thumb, mime, err := Thumbnail(pb, ThumbnailDimension)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/webp" {
		t.Errorf("thumbnail mime = %s", mime)
	}
	if len(thumb) == 0 {
		t.Error("empty thumbnail")
	}
}

func TestInspect(t *testing.T) {
	pb, err := EncodePNG(testImage(320, 200))
	if err != nil {
		t.Fatal(err)
	}
	m, err := Inspect(pb)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 320 || m.Height != 200 {
		t.Errorf("Inspect = %dx%d, want 320x200", m.Width, m.Height)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Error("Decode accepted garbage")
	}
	if _, err := Inspect([]byte{0x00}); err == nil {
		t.Error("Inspect accepted garbage")
	}
}
