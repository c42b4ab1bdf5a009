// Package picker implements the ":" autocomplete for emote names.
package picker

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/haytac/lounge-emotes/pkg/interfaces"
)

const (
	// MaxResults caps the number of suggestions shown.
	MaxResults = 20
	// MinWidth is the smallest width the result list is drawn with.
	MinWidth = 150
)

// Keys the picker reacts to, named after their DOM key values.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyTab       = "Tab"
	KeyEscape    = "Escape"
)

var triggerPattern = regexp.MustCompile(`:(\w*)$`)

// Trigger extracts the term typed after a colon that directly precedes the
// cursor. The cursor is a byte offset into value.
func Trigger(value string, cursor int) (string, bool) {
	cursor = clampCursor(value, cursor)
	m := triggerPattern.FindStringSubmatch(value[:cursor])
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Filter returns up to limit names starting with term, ignoring case, in
// alphabetical order. The cap is applied while collecting, before sorting.
func Filter(lookup interfaces.EmoteLookup, term string, limit int) []string {
	if lookup == nil || term == "" || limit <= 0 {
		return nil
	}
	needle := strings.ToLower(term)
	var out []string
	for _, name := range lookup.Names() {
		if strings.HasPrefix(strings.ToLower(name), needle) {
			out = append(out, name)
			if len(out) >= limit {
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Edit is a change the host must apply to the chat input.
type Edit struct {
	Value  string
	Cursor int
	// Notify asks the host to emit an input event so its own listeners see
	// the new value.
	Notify bool
}

// Commit inserts name in place of the ":term" that ends at cursor and adds a
// trailing space. The text between the last colon and the cursor must still
// start with the first character of term, which the picker captured when it
// opened; otherwise the input changed underneath and nothing is inserted.
func Commit(value string, cursor int, term, name string) (Edit, bool) {
	cursor = clampCursor(value, cursor)
	before := value[:cursor]
	colon := strings.LastIndexByte(before, ':')
	if colon < 0 || term == "" || name == "" {
		return Edit{}, false
	}
	first, _ := utf8.DecodeRuneInString(term)
	typed, size := utf8.DecodeRuneInString(before[colon+1:])
	if size == 0 || unicode.ToLower(first) != unicode.ToLower(typed) {
		return Edit{}, false
	}
	return Edit{
		Value:  value[:colon] + name + " " + value[cursor:],
		Cursor: colon + len(name) + 1,
		Notify: true,
	}, true
}

func clampCursor(value string, cursor int) int {
	if cursor < 0 {
		return 0
	}
	if cursor > len(value) {
		return len(value)
	}
	return cursor
}

// Box is the on-screen extent of the chat input.
type Box struct {
	Top, Left, Width int
}

// Placement positions the result list above the input.
type Placement struct {
	Bottom, Left, Width int
}

// Layout anchors the list to the top edge of the input.
func Layout(input Box, viewportHeight int) Placement {
	return Placement{
		Bottom: viewportHeight - input.Top,
		Left:   input.Left,
		Width:  max(input.Width, MinWidth),
	}
}
