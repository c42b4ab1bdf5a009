package tui

import (
	"unicode/utf8"

	"github.com/haytac/lounge-emotes/internal/app"
	"github.com/haytac/lounge-emotes/internal/picker"
	"golang.org/x/net/html"
)

// Document implements app.Host.
func (c *Chat) Document() *html.Node { return c.doc }

// Input implements app.Host.
func (c *Chat) Input() app.Input { return chatInput{c} }

// InputBox implements app.Geometry.
func (c *Chat) InputBox() picker.Box {
	return picker.Box{Top: c.height - inputHeight, Left: 0, Width: c.input.Width}
}

// ViewportHeight implements app.Geometry.
func (c *Chat) ViewportHeight() int { return c.height }

// chatInput adapts the text input. The picker works on byte offsets, the
// text input on rune positions.
type chatInput struct{ c *Chat }

func (i chatInput) Value() string { return i.c.input.Value() }

func (i chatInput) Cursor() int {
	v := []rune(i.c.input.Value())
	pos := min(i.c.input.Position(), len(v))
	return len(string(v[:pos]))
}

func (i chatInput) SetValue(v string, cursor int) {
	i.c.input.SetValue(v)
	cursor = max(0, min(cursor, len(v)))
	i.c.input.SetCursor(utf8.RuneCountInString(v[:cursor]))
}

func (i chatInput) NotifyInput() { i.c.inputChanged = true }
