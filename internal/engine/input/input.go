// Package input converts SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies a viewer event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseDrag
	EventMouseWheel
	EventMouseClick // left button released without dragging
)

// clickSlop is how far, in window points, the mouse may travel while a
// button is held and still count as a click.
const clickSlop = 4

// Key is a key the viewer reacts to.
type Key int

const (
	KeyUnknown Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
	KeySpace // pause or resume animation
	KeyR     // reset joints and camera
	KeyB     // toggle bounding boxes
	KeyF12   // screenshot
)

var scancodes = map[sdl.Scancode]Key{
	sdl.SCANCODE_LEFT:   KeyLeft,
	sdl.SCANCODE_RIGHT:  KeyRight,
	sdl.SCANCODE_UP:     KeyUp,
	sdl.SCANCODE_DOWN:   KeyDown,
	sdl.SCANCODE_ESCAPE: KeyEscape,
	sdl.SCANCODE_SPACE:  KeySpace,
	sdl.SCANCODE_R:      KeyR,
	sdl.SCANCODE_B:      KeyB,
	sdl.SCANCODE_F12:    KeyF12,
}

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
	DeltaX float32 // Drag distance or horizontal wheel steps
	DeltaY float32 // Drag distance or vertical wheel steps
	Button uint8
	X, Y   int // Click position in window points
}

// Input handles all input processing.
type Input struct {
	events []Event
	held   map[Key]bool
	button uint8   // Mouse button currently dragging, 0 when none
	travel float32 // Distance moved since the button went down
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[Key]bool),
	}
}

// Update polls SDL events and converts them to viewer events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			key, ok := scancodes[e.Keysym.Scancode]
			if !ok {
				continue
			}
			if e.Type == sdl.KEYDOWN {
				i.held[key] = true
				if e.Repeat == 0 {
					i.events = append(i.events, Event{Type: EventKeyDown, Key: key})
				}
			} else if e.Type == sdl.KEYUP {
				delete(i.held, key)
				i.events = append(i.events, Event{Type: EventKeyUp, Key: key})
			}

		case *sdl.MouseButtonEvent:
			if e.Type == sdl.MOUSEBUTTONDOWN && i.button == 0 {
				i.button = e.Button
				i.travel = 0
			} else if e.Type == sdl.MOUSEBUTTONUP && e.Button == i.button {
				if e.Button == sdl.BUTTON_LEFT && i.travel <= clickSlop {
					i.events = append(i.events, Event{
						Type:   EventMouseClick,
						Button: e.Button,
						X:      int(e.X),
						Y:      int(e.Y),
					})
				}
				i.button = 0
			}

		case *sdl.MouseMotionEvent:
			if i.button != 0 {
				i.travel += abs(float32(e.XRel)) + abs(float32(e.YRel))
				i.events = append(i.events, Event{
					Type:   EventMouseDrag,
					DeltaX: float32(e.XRel),
					DeltaY: float32(e.YRel),
					Button: i.button,
				})
			}

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseWheel,
				DeltaX: float32(e.X),
				DeltaY: float32(e.Y),
			})
		}
	}

	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key went down this frame.
func (i *Input) IsKeyPressed(key Key) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}

// IsKeyHeld reports whether a key is currently down.
func (i *Input) IsKeyHeld(key Key) bool {
	return i.held[key]
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
