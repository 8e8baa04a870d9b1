// Package imaging decodes, resizes, and re-encodes the photographs users
// contribute to a sheet. Uploads beyond the size threshold are scaled
// down in pure Go; thumbnails for the gallery UI are encoded as WebP.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // decode support for uploaded WebP
)

// SupportedImageExtensions maps accepted photo extensions to MIME types.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MaxUploadDimension is the longest edge kept for uploaded photos; larger
// images are scaled down before storage. Contact-sheet frames render at a
// fraction of this.
const MaxUploadDimension = 2048

// ThumbnailDimension is the longest edge of gallery thumbnails.
const ThumbnailDimension = 400

// Decode decodes photo bytes into an image, reporting the detected format.
func Decode(b []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Fit scales img down so its longest edge is at most maxDim, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func Fit(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	var nw, nh int
	if w >= h {
		nw = maxDim
		nh = h * maxDim / w
	} else {
		nh = maxDim
		nw = w * maxDim / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodeJPEG encodes img as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail produces a WebP thumbnail of photo bytes for the gallery UI.
func Thumbnail(b []byte, maxDim int) ([]byte, string, error) {
	img, _, err := Decode(b)
	if err != nil {
		return nil, "", err
	}
	small := Fit(img, maxDim)
	var buf bytes.Buffer
	if err := webp.Encode(&buf, small, &webp.Options{Quality: 80}); err != nil {
		return nil, "", fmt.Errorf("encode webp thumbnail: %w", err)
	}
	return buf.Bytes(), "image/webp", nil
}

// Meta is the capture metadata surfaced back to the upload client so
// frames can carry their shot date and camera.
type Meta struct {
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	DateTaken   time.Time `json:"dateTaken,omitempty"`
	CameraMake  string    `json:"cameraMake,omitempty"`
	CameraModel string    `json:"cameraModel,omitempty"`
}

// Inspect reads dimensions and, where present, EXIF capture metadata from
// photo bytes. EXIF failures are not errors: many PNGs and screenshots
// carry none.
func Inspect(b []byte) (Meta, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return Meta{}, fmt.Errorf("inspect image: %w", err)
	}
	m := Meta{Width: cfg.Width, Height: cfg.Height}

	exifData, err := imagemeta.Decode(bytes.NewReader(b))
	if err != nil {
		log.Debug().Err(err).Msg("no usable EXIF metadata")
		return m, nil
	}
	if !exifData.DateTimeOriginal().IsZero() {
		m.DateTaken = exifData.DateTimeOriginal()
	} else if !exifData.CreateDate().IsZero() {
		m.DateTaken = exifData.CreateDate()
	}
	m.CameraMake = strings.TrimSpace(exifData.Make)
	m.CameraModel = strings.TrimSpace(exifData.Model)
	return m, nil
}
