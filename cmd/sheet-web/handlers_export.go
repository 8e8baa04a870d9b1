package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/filmstriplab/filmstrip/internal/assets"
	"github.com/filmstriplab/filmstrip/internal/browser"
	"github.com/filmstriplab/filmstrip/internal/imaging"
	"github.com/filmstriplab/filmstrip/internal/render"
	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// exportTimeout bounds one export's wall clock, browser startup included.
const exportTimeout = 45 * time.Second

var (
	// errExportBusy is returned while another export holds the gate.
	errExportBusy = errors.New("an export is already in progress")
	// errExportTimeout marks an export that exceeded exportTimeout.
	errExportTimeout = errors.New("export timed out; try again with fewer or smaller images")
)

type exportRequest struct {
	sheet.Snapshot
	Engine string `json:"engine,omitempty"`
}

// POST /api/export
func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch req.Engine {
	case "", "compose", "browser":
	default:
		httpError(w, http.StatusBadRequest, fmt.Sprintf("unknown engine %q", req.Engine))
		return
	}

	select {
	case s.exportGate <- struct{}{}:
		defer func() { <-s.exportGate }()
	default:
		httpError(w, http.StatusTooManyRequests, errExportBusy.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	start := time.Now()
	png, err := s.renderPNG(ctx, req.Snapshot, req.Engine)
	if err != nil {
		s.exportError(w, ctx, err)
		return
	}

	log.Info().
		Str("engine", engineName(req.Engine)).
		Int("frames", len(req.Snapshot.FrameOrder)).
		Dur("duration", time.Since(start)).
		Msg("Export complete")

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *server) renderPNG(ctx context.Context, snap sheet.Snapshot, engine string) ([]byte, error) {
	if engine == "browser" {
		return s.capture.Render(ctx, snap, browser.Options{
			Scale:    snap.Scale,
			Rotation: snap.Rotation,
			ExecPath: s.chromePath,
		})
	}
	img, err := s.compose.Compose(ctx, snap, render.Options{
		Scale:    snap.Scale,
		Rotation: snap.Rotation,
	})
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(img)
}

// exportError maps renderer failures onto the response contract: client
// mistakes are 400s, a blown deadline is its own class, the rest is a 500.
func (s *server) exportError(w http.ResponseWriter, ctx context.Context, err error) {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		log.Warn().Err(err).Msg("Export timed out")
		httpError(w, http.StatusRequestTimeout, errExportTimeout.Error())
	case errors.Is(err, sheet.ErrMalformed):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assets.ErrTooLarge):
		httpError(w, http.StatusBadRequest, fmt.Sprintf("%v; upload the photo and reference it by filename instead", err))
	default:
		log.Error().Err(err).Msg("Export failed")
		httpError(w, http.StatusInternalServerError, err.Error())
	}
}

func engineName(engine string) string {
	if engine == "" {
		return "compose"
	}
	return engine
}

// legacyExportRequest is the positional wire format of the first editor
// generation: parallel arrays indexed by frame number instead of keyed
// maps. It is still accepted and translated into a snapshot.
type legacyExportRequest struct {
	Images     []string `json:"images"`
	Highlights []struct {
		FrameNumber int    `json:"frameNumber"`
		Type        string `json:"type"`
	} `json:"highlights"`
	XMarks []int `json:"xMarks"`
}

// POST /api/export/legacy
func (s *server) handleExportLegacy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req legacyExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Images == nil {
		httpError(w, http.StatusBadRequest, "images is required")
		return
	}

	snap := sheet.Snapshot{
		Frames:     make(map[string]sheet.Frame, len(req.Images)),
		FrameOrder: make([]string, 0, len(req.Images)),
		FilmStock:  sheet.DefaultStockID,
	}
	for i, src := range req.Images {
		id := fmt.Sprintf("frame-%d", i+1)
		snap.Frames[id] = sheet.Frame{ID: id, ImageRef: src}
		snap.FrameOrder = append(snap.FrameOrder, id)
	}
	for _, h := range req.Highlights {
		id, ok := legacyFrameID(snap, h.FrameNumber)
		if !ok {
			httpError(w, http.StatusBadRequest, fmt.Sprintf("highlight frameNumber %d out of range", h.FrameNumber))
			return
		}
		f := snap.Frames[id]
		switch h.Type {
		case "", "default":
			f.Highlights.Rectangle = true
		case "circle":
			f.Highlights.Circle = true
		case "scribble":
			f.Highlights.Scribble = true
		default:
			httpError(w, http.StatusBadRequest, fmt.Sprintf("unknown highlight type %q", h.Type))
			return
		}
		snap.Frames[id] = f
	}
	for _, n := range req.XMarks {
		id, ok := legacyFrameID(snap, n)
		if !ok {
			httpError(w, http.StatusBadRequest, fmt.Sprintf("xMark frameNumber %d out of range", n))
			return
		}
		f := snap.Frames[id]
		f.Highlights.Cross = true
		snap.Frames[id] = f
	}

	select {
	case s.exportGate <- struct{}{}:
		defer func() { <-s.exportGate }()
	default:
		httpError(w, http.StatusTooManyRequests, errExportBusy.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), exportTimeout)
	defer cancel()

	png, err := s.renderPNG(ctx, snap, "")
	if err != nil {
		s.exportError(w, ctx, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// legacyFrameID resolves a 1-based frame number against the synthesized
// order.
func legacyFrameID(snap sheet.Snapshot, frameNumber int) (string, bool) {
	if frameNumber < 1 || frameNumber > len(snap.FrameOrder) {
		return "", false
	}
	return snap.FrameOrder[frameNumber-1], true
}
