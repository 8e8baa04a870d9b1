package editor

import (
	"strings"

	"github.com/filmstriplab/filmstrip/internal/sheet"
)

// Tool identifies the active annotation tool.
type Tool string

const (
	ToolNone      Tool = "none"
	ToolRectangle Tool = "rectangle"
	ToolCircle    Tool = "circle"
	ToolScribble  Tool = "scribble"
	ToolCross     Tool = "cross"
	ToolText      Tool = "text"
	ToolDelete    Tool = "delete"
	ToolLoupe     Tool = "loupe"
)

const stickerToolPrefix = "sticker-"

// StickerTool returns the tool that places stickers of the given kind.
func StickerTool(kind sheet.StickerKind) Tool {
	return Tool(stickerToolPrefix + string(kind))
}

// HighlightKind returns the highlight flag a click with this tool toggles.
func (t Tool) HighlightKind() (sheet.HighlightKind, bool) {
	switch t {
	case ToolRectangle:
		return sheet.HighlightRectangle, true
	case ToolCircle:
		return sheet.HighlightCircle, true
	case ToolScribble:
		return sheet.HighlightScribble, true
	case ToolCross:
		return sheet.HighlightCross, true
	}
	return "", false
}

// StickerKind returns the sticker kind this tool places. The text tool
// places text stickers.
func (t Tool) StickerKind() (sheet.StickerKind, bool) {
	if t == ToolText {
		return sheet.StickerText, true
	}
	if rest, ok := strings.CutPrefix(string(t), stickerToolPrefix); ok {
		kind := sheet.StickerKind(rest)
		if _, known := sheet.StickerConfigs[kind]; known {
			return kind, true
		}
	}
	return "", false
}

// PlacesStickers reports whether the tool is a sticker or text tool.
func (t Tool) PlacesStickers() bool {
	_, ok := t.StickerKind()
	return ok
}
