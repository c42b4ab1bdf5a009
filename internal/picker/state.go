package picker

import (
	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/rs/zerolog"
)

// KeyResult tells the host what happened to a key press.
type KeyResult struct {
	// Handled is set when the host must suppress the key's default action.
	Handled bool
	// Edit is set when the key committed a selection.
	Edit *Edit
}

// Target identifies where a click landed.
type Target int

const (
	// Outside is anywhere but the input or the list.
	Outside Target = iota
	// OnInput is the chat input.
	OnInput
	// OnList is the result list.
	OnList
)

// Picker holds the session state of one chat input.
type Picker struct {
	lookup interfaces.EmoteLookup
	max    int
	log    zerolog.Logger

	visible  bool
	term     string
	results  []string
	selected int

	value  string
	cursor int
}

// New creates a hidden picker suggesting names from lookup.
func New(lookup interfaces.EmoteLookup) *Picker {
	return &Picker{
		lookup:   lookup,
		max:      MaxResults,
		log:      logging.Component("picker"),
		selected: -1,
	}
}

func (p *Picker) Visible() bool { return p.visible }

func (p *Picker) Term() string { return p.term }

func (p *Picker) Results() []string { return p.results }

func (p *Picker) Selected() int { return p.selected }

// SetLookup replaces the name source, e.g. after the catalog was re-fetched.
func (p *Picker) SetLookup(l interfaces.EmoteLookup) { p.lookup = l }

// SelectedName returns the highlighted result, if any.
func (p *Picker) SelectedName() (string, bool) {
	if p.selected < 0 || p.selected >= len(p.results) {
		return "", false
	}
	return p.results[p.selected], true
}

// HandleInput re-evaluates the trigger after the input changed. The picker
// is shown with the first result selected when there are matches.
func (p *Picker) HandleInput(value string, cursor int) {
	p.value, p.cursor = value, cursor
	term, ok := Trigger(value, cursor)
	if !ok {
		p.Hide()
		return
	}
	results := Filter(p.lookup, term, p.max)
	if len(results) == 0 {
		p.Hide()
		return
	}
	p.visible = true
	p.term = term
	p.results = results
	p.selected = 0
}

// SetInput records the current input without re-evaluating the trigger.
// Hosts call it before a commit so the edit applies to the live value.
func (p *Picker) SetInput(value string, cursor int) {
	p.value, p.cursor = value, cursor
}

// HandleKey applies navigation and commit keys. Keys are only consumed while
// the picker is visible.
func (p *Picker) HandleKey(key string) KeyResult {
	if !p.visible || len(p.results) == 0 {
		return KeyResult{}
	}
	switch key {
	case KeyArrowDown:
		p.selected = (p.selected + 1) % len(p.results)
	case KeyArrowUp:
		p.selected = (p.selected - 1 + len(p.results)) % len(p.results)
	case KeyEnter, KeyTab:
		name, ok := p.SelectedName()
		if !ok {
			p.Hide()
			return KeyResult{Handled: true}
		}
		return KeyResult{Handled: true, Edit: p.commit(name)}
	case KeyEscape:
		p.Hide()
	default:
		return KeyResult{}
	}
	return KeyResult{Handled: true}
}

// Select commits a result chosen with the pointer.
func (p *Picker) Select(name string) *Edit {
	if !p.visible {
		return nil
	}
	return p.commit(name)
}

// HandleClick hides the picker on clicks outside the input and the list.
func (p *Picker) HandleClick(target Target) {
	if target == Outside {
		p.Hide()
	}
}

// Hide closes the picker and clears the session.
func (p *Picker) Hide() {
	p.visible = false
	p.term = ""
	p.results = nil
	p.selected = -1
}

func (p *Picker) commit(name string) *Edit {
	edit, ok := Commit(p.value, p.cursor, p.term, name)
	p.Hide()
	if !ok {
		p.log.Debug().Str("name", name).Msg("Selection did not match the typed term")
		return nil
	}
	p.value, p.cursor = edit.Value, edit.Cursor
	return &edit
}
