package app

import (
	"context"
	"errors"

	"github.com/haytac/lounge-emotes/internal/lazyload"
	"github.com/haytac/lounge-emotes/internal/picker"
	"github.com/haytac/lounge-emotes/internal/watcher"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Event is something the host reports to a Session.
type Event interface {
	event()
}

// InitEvent (re)attaches the pipeline to the host.
type InitEvent struct{}

// MutationEvent carries children added to the message container.
type MutationEvent struct {
	Batch []watcher.Mutation
}

// ScrollEvent reports the visible part of the message container.
type ScrollEvent struct {
	Viewport lazyload.Rect
	Locate   lazyload.Locator
}

// InputEvent reports that the chat input value or cursor changed.
type InputEvent struct{}

// KeyEvent is a key press in the chat input.
type KeyEvent struct {
	Key string
}

// ClickEvent is a click anywhere in the page. Name is the picked result when
// Target is picker.OnList.
type ClickEvent struct {
	Target picker.Target
	Name   string
}

func (InitEvent) event()     {}
func (MutationEvent) event() {}
func (ScrollEvent) event()   {}
func (InputEvent) event()    {}
func (KeyEvent) event()      {}
func (ClickEvent) event()    {}

// Effect reports what handling an event changed.
type Effect struct {
	// PreventDefault is set when the host must suppress the event's default action.
	PreventDefault bool
	// Created lists new placeholders.
	Created []*html.Node
	// Resolved lists placeholders whose real source was swapped in.
	Resolved []*html.Node
	// Edit is the chat input change that was applied.
	Edit *picker.Edit
	// Placement positions the picker list while it is visible.
	Placement *picker.Placement
	Err       error
}

// Session serializes every event of one host through Dispatch.
type Session struct {
	app  *Application
	host Host

	retries chan struct{}
}

// NewSession binds app to host. Scheduled retries are delivered to Run.
func NewSession(app *Application, host Host) *Session {
	s := &Session{app: app, host: host, retries: make(chan struct{}, 1)}
	app.SetRetryHandler(func(Host) {
		select {
		case s.retries <- struct{}{}:
		default:
		}
	})
	return s
}

// Host returns the host the session is bound to.
func (s *Session) Host() Host { return s.host }

// Dispatch handles one event. It must not be called concurrently.
func (s *Session) Dispatch(ctx context.Context, ev Event) Effect {
	switch ev := ev.(type) {
	case InitEvent:
		err := s.app.Initialize(ctx, s.host)
		if err != nil && !errors.Is(err, ErrHostNotReady) {
			log.Error().Err(err).Msg("Initialization failed")
		}
		return Effect{Err: err}

	case MutationEvent:
		return Effect{Created: s.app.Watcher.Handle(ev.Batch)}

	case ScrollEvent:
		obs := s.app.Registry.Current()
		if obs == nil || ev.Locate == nil {
			return Effect{}
		}
		return Effect{Resolved: obs.Intersect(ev.Viewport, ev.Locate)}

	case InputEvent:
		input := s.host.Input()
		if input == nil {
			return Effect{}
		}
		s.app.Picker.HandleInput(input.Value(), input.Cursor())
		return Effect{Placement: s.placement()}

	case KeyEvent:
		s.syncInput()
		res := s.app.Picker.HandleKey(ev.Key)
		eff := Effect{PreventDefault: res.Handled, Placement: s.placement()}
		if res.Edit != nil {
			eff.Edit = s.apply(res.Edit)
		}
		return eff

	case ClickEvent:
		if ev.Target == picker.OnList && ev.Name != "" {
			s.syncInput()
			return Effect{Edit: s.apply(s.app.Picker.Select(ev.Name))}
		}
		s.app.Picker.HandleClick(ev.Target)
		return Effect{Placement: s.placement()}
	}
	return Effect{}
}

// syncInput hands the live input to the picker ahead of a commit.
func (s *Session) syncInput() {
	if input := s.host.Input(); input != nil {
		s.app.Picker.SetInput(input.Value(), input.Cursor())
	}
}

// Run dispatches events in arrival order, plus scheduled initialization
// retries, until ctx is done or events is closed.
func (s *Session) Run(ctx context.Context, events <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.retries:
			s.Dispatch(ctx, InitEvent{})
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.Dispatch(ctx, ev)
		}
	}
}

// Retries delivers a value whenever a scheduled initialization retry fires.
// Hosts driving Dispatch themselves forward it as an InitEvent.
func (s *Session) Retries() <-chan struct{} { return s.retries }

func (s *Session) apply(edit *picker.Edit) *picker.Edit {
	if edit == nil {
		return nil
	}
	input := s.host.Input()
	if input == nil {
		return nil
	}
	input.SetValue(edit.Value, edit.Cursor)
	if edit.Notify {
		input.NotifyInput()
	}
	return edit
}

func (s *Session) placement() *picker.Placement {
	if !s.app.Picker.Visible() {
		return nil
	}
	geo, ok := s.host.(Geometry)
	if !ok {
		return nil
	}
	p := picker.Layout(geo.InputBox(), geo.ViewportHeight())
	return &p
}
