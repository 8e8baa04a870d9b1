package editor

// PointerKind discriminates pointer events.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

// Modifiers carries keyboard modifier state alongside pointer events.
type Modifiers struct {
	Shift bool
	Alt   bool
}

// PointerEvent is one pointer event in canvas-local coordinates. Clicks is
// the click count at PointerDown (2 for a double-click), zero otherwise.
type PointerEvent struct {
	Kind      PointerKind
	X         float64
	Y         float64
	Clicks    int
	Modifiers Modifiers
}

// Key names delivered through KeyEvent. The surface only reacts to the
// editing commit keys.
const (
	KeyEnter  = "Enter"
	KeyEscape = "Escape"
)

// KeyEvent is one keyboard event.
type KeyEvent struct {
	Key string
}

// Handler consumes canvas input events.
type Handler interface {
	HandlePointer(PointerEvent)
	HandleKey(KeyEvent)
}

// InputPort delivers pointer and keyboard events to a handler. Concrete
// implementations bridge DOM listeners, native event loops, or test
// scripts; the surface never touches a global event source directly.
type InputPort interface {
	// Attach routes the port's events to h until the returned detach
	// function is called.
	Attach(h Handler) (detach func())
}
