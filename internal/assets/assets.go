// Package assets resolves the decorative and photographic image bytes
// every rendering surface composes from.
//
// The on-disk contract is fixed: stocks/<stockID>/ holds frame.png,
// title.png, dx.png, sprockets.png and index/<n>.png; highlights/ holds
// one overlay image per highlight kind; stickers/ holds the decorative
// sticker bodies. A small default set ships embedded in the binary and
// backs any name missing from the configured asset root.
package assets

import (
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/filmstriplab/filmstrip/internal/sheet"
)

//go:embed all:defaults
var defaultFS embed.FS

// MaxEmbeddedImageSize caps decoded data-URI payloads. Anything larger
// fails the export with ErrTooLarge rather than being truncated.
const MaxEmbeddedImageSize = 10 << 20

var (
	// ErrNotFound marks an asset name that resolves to no bytes.
	ErrNotFound = errors.New("asset not found")
	// ErrTooLarge marks an embedded image beyond MaxEmbeddedImageSize.
	ErrTooLarge = errors.New("embedded image too large")
)

// Library serves asset bytes from an optional asset root with the
// embedded defaults as fallback, and resolves frame image references
// (data URIs or filenames under the photo directory).
type Library struct {
	root     string
	photoDir string
	cache    *assetCache
}

// NewLibrary returns a library over the given asset root and photo
// directory. Either may be empty: an empty root serves embedded defaults
// only, an empty photoDir rejects filename refs.
func NewLibrary(root, photoDir string) *Library {
	return &Library{root: root, photoDir: photoDir, cache: newAssetCache(root)}
}

// Close releases the filesystem watcher, if any.
func (l *Library) Close() error { return l.cache.close() }

// Seed writes the embedded default asset set under root, creating the
// canonical directory layout. Files already present are left alone so a
// customized root survives re-seeding.
func Seed(root string) error {
	return fs.WalkDir(defaultFS, "defaults", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel := strings.TrimPrefix(p, "defaults/")
		dst := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(dst); err == nil {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		b, err := defaultFS.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, b, 0o644)
	})
}

// PhotoDir returns the configured photo directory.
func (l *Library) PhotoDir() string { return l.photoDir }

// read returns the bytes for a root-relative asset path, preferring the
// configured root over the embedded defaults.
func (l *Library) read(rel string) ([]byte, error) {
	rel = path.Clean(rel)
	if strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if l.root != "" {
		if b, ok := l.cache.get(rel); ok {
			return b, nil
		}
		b, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(rel)))
		if err == nil {
			l.cache.put(rel, b)
			return b, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read asset %s: %w", rel, err)
		}
	}
	b, err := defaultFS.ReadFile(path.Join("defaults", rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return b, nil
}

// Stock returns a named decoration for a film stock (frame.png,
// title.png, dx.png, sprockets.png).
func (l *Library) Stock(stockID, name string) ([]byte, error) {
	return l.read(path.Join("stocks", stockID, name))
}

// Index returns the burnt-in index overlay for a 1-based frame number.
// Stocks without index art return ErrNotFound; renderers fall back to a
// drawn label.
func (l *Library) Index(stockID string, frameNumber int) ([]byte, error) {
	return l.read(path.Join("stocks", stockID, "index", fmt.Sprintf("%d.png", frameNumber)))
}

// Highlight returns the overlay image for a highlight kind, via the one
// canonical kind-to-asset table in the sheet package.
func (l *Library) Highlight(kind sheet.HighlightKind) ([]byte, error) {
	return l.read(path.Join("highlights", sheet.HighlightAsset(kind)))
}

// Sticker returns the decorative body for a non-text sticker kind.
func (l *Library) Sticker(kind sheet.StickerKind) ([]byte, error) {
	cfg, ok := sheet.StickerConfigs[kind]
	if !ok || cfg.Asset == "" {
		return nil, fmt.Errorf("%w: sticker %s", ErrNotFound, kind)
	}
	return l.read(path.Join("stickers", cfg.Asset))
}

// Resolve turns a frame ImageRef into image bytes. Data URIs are decoded
// subject to MaxEmbeddedImageSize; anything else is treated as a filename
// under the photo directory. Traversal segments are rejected.
func (l *Library) Resolve(src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src)
	}
	if src == "" {
		return nil, fmt.Errorf("%w: empty image ref", ErrNotFound)
	}
	if l.photoDir == "" {
		return nil, fmt.Errorf("%w: no photo directory configured for %q", ErrNotFound, src)
	}
	for _, seg := range strings.Split(filepath.ToSlash(src), "/") {
		if seg == ".." {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, src)
		}
	}
	b, err := os.ReadFile(filepath.Join(l.photoDir, filepath.FromSlash(src)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, src)
		}
		return nil, fmt.Errorf("resolve %q: %w", src, err)
	}
	return b, nil
}

// decodeDataURI decodes a base64 data URI, enforcing the size cap before
// allocating the decoded buffer.
func decodeDataURI(src string) ([]byte, error) {
	idx := strings.Index(src, ",")
	if idx < 0 {
		return nil, fmt.Errorf("%w: malformed data URI", ErrNotFound)
	}
	meta, payload := src[:idx], src[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: unsupported data URI encoding", ErrNotFound)
	}
	if est := base64.StdEncoding.DecodedLen(len(payload)); est > MaxEmbeddedImageSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, est, MaxEmbeddedImageSize)
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrNotFound, err)
	}
	return b, nil
}

// DataURI encodes image bytes for inlining into the browser renderer's
// standalone document.
func DataURI(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}
