package app

import (
	"github.com/haytac/lounge-emotes/internal/picker"
	"golang.org/x/net/html"
)

// Host is the chat page the pipeline is attached to.
type Host interface {
	// Document returns the root of the chat page.
	Document() *html.Node
	// Input returns the chat input, or nil while it is not rendered.
	Input() Input
}

// Input is the chat text field.
type Input interface {
	Value() string
	// Cursor is a byte offset into Value.
	Cursor() int
	SetValue(value string, cursor int)
	// NotifyInput lets the host's own listeners observe a programmatic change.
	NotifyInput()
}

// Geometry is implemented by hosts that can report layout, enabling
// placement of the picker list.
type Geometry interface {
	InputBox() picker.Box
	ViewportHeight() int
}
