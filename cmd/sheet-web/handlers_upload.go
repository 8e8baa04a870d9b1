package main

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/filmstriplab/filmstrip/internal/imaging"
)

const (
	// maxUploadFileSize caps one uploaded photo's byte size.
	maxUploadFileSize = 15 << 20
	// maxUploadCount caps files per upload request.
	maxUploadCount = 24
)

type uploadedFile struct {
	Ref      string       `json:"ref"`
	ThumbRef string       `json:"thumbRef,omitempty"`
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	Meta     imaging.Meta `json:"meta"`
	Resized  bool         `json:"resized,omitempty"`
	Error    string       `json:"error,omitempty"`
	Rejected bool         `json:"rejected,omitempty"`
}

// POST /api/upload
//
// Multipart upload of gallery photos. Validation is per file: one bad
// file is reported in its result entry without failing the batch.
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, int64(maxUploadCount+1)*maxUploadFileSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httpError(w, http.StatusBadRequest, "no files provided")
		return
	}
	if len(files) > maxUploadCount {
		httpError(w, http.StatusBadRequest, fmt.Sprintf("too many files: %d exceeds the limit of %d", len(files), maxUploadCount))
		return
	}

	sessionID := uuid.NewString()
	sessionDir := filepath.Join(s.sessionRoot, sessionID)
	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", sessionDir).Msg("Cannot create session directory")
		httpError(w, http.StatusInternalServerError, "cannot store uploads")
		return
	}

	results := make([]uploadedFile, 0, len(files))
	for _, fh := range files {
		results = append(results, s.storeUpload(sessionDir, sessionID, fh))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session": sessionID,
		"files":   results,
	})
}

func (s *server) storeUpload(dir, sessionID string, fh *multipart.FileHeader) uploadedFile {
	res := uploadedFile{Name: fh.Filename, Size: fh.Size}

	if fh.Size > maxUploadFileSize {
		res.Rejected = true
		res.Error = fmt.Sprintf("file exceeds the %d MB limit", maxUploadFileSize>>20)
		return res
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := imaging.SupportedImageExtensions[ext]; !ok {
		res.Rejected = true
		res.Error = fmt.Sprintf("unsupported file type %q", ext)
		return res
	}

	f, err := fh.Open()
	if err != nil {
		res.Rejected = true
		res.Error = "cannot read file"
		return res
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadFileSize+1))
	if err != nil || len(data) > maxUploadFileSize {
		res.Rejected = true
		res.Error = "cannot read file"
		return res
	}

	meta, err := imaging.Inspect(data)
	if err != nil {
		res.Rejected = true
		res.Error = "not a decodable image"
		return res
	}

	// Shrink oversized photos before they land on disk; exports never
	// need more resolution than the canvas can show.
	if meta.Width > imaging.MaxUploadDimension || meta.Height > imaging.MaxUploadDimension {
		img, _, derr := imaging.Decode(data)
		if derr == nil {
			small := imaging.Fit(img, imaging.MaxUploadDimension)
			if encoded, eerr := imaging.EncodeJPEG(small, 90); eerr == nil {
				data = encoded
				ext = ".jpg"
				res.Resized = true
				b := small.Bounds()
				meta.Width, meta.Height = b.Dx(), b.Dy()
			}
		}
	}

	base := uuid.NewString()
	name := base + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		log.Error().Err(err).Str("file", fh.Filename).Msg("Cannot store upload")
		res.Rejected = true
		res.Error = "cannot store file"
		return res
	}

	res.Ref = sessionID + "/" + name
	res.Meta = meta

	// Gallery thumbnail alongside the original. A failed thumbnail is
	// not a failed upload; the client falls back to the full photo.
	if thumb, _, terr := imaging.Thumbnail(data, imaging.ThumbnailDimension); terr != nil {
		log.Warn().Err(terr).Str("file", fh.Filename).Msg("Thumbnail generation failed")
	} else {
		thumbName := base + ".thumb.webp"
		if werr := os.WriteFile(filepath.Join(dir, thumbName), thumb, 0o644); werr != nil {
			log.Warn().Err(werr).Str("file", fh.Filename).Msg("Cannot store thumbnail")
		} else {
			res.ThumbRef = sessionID + "/" + thumbName
		}
	}
	log.Debug().Str("ref", res.Ref).Int("width", meta.Width).Int("height", meta.Height).Msg("Stored upload")
	return res
}
