// Package lazyload swaps real image sources into emote placeholders once they
// come near the visible part of a scroll container.
package lazyload

import (
	"sync"

	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/internal/metrics"
	"github.com/haytac/lounge-emotes/internal/rewrite"
	"golang.org/x/net/html"
)

var logger = logging.Component("lazyload")

// DefaultMargin extends the viewport so images load slightly before they are visible.
const DefaultMargin = 250

// Rect is an extent along the scroll axis, Bottom exclusive.
type Rect struct {
	Top    int
	Bottom int
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.Top < o.Bottom && o.Top < r.Bottom
}

// Expand grows r by margin on both ends.
func (r Rect) Expand(margin int) Rect {
	return Rect{Top: r.Top - margin, Bottom: r.Bottom + margin}
}

// Locator reports where a node currently sits inside the container.
// ok is false for nodes that are not laid out (detached, hidden).
type Locator func(n *html.Node) (r Rect, ok bool)

// Observer tracks the pending placeholders of one container.
type Observer struct {
	container *html.Node
	margin    int
	pending   map[*html.Node]struct{}
	order     []*html.Node
}

func newObserver(container *html.Node, margin int) *Observer {
	return &Observer{
		container: container,
		margin:    margin,
		pending:   make(map[*html.Node]struct{}),
	}
}

// Container returns the scroll container the observer is attached to.
func (o *Observer) Container() *html.Node { return o.container }

// Observe starts watching placeholders. Resolved images and nodes already
// observed are ignored.
func (o *Observer) Observe(imgs ...*html.Node) {
	for _, img := range imgs {
		if img == nil || !rewrite.IsPending(img) {
			continue
		}
		if _, ok := o.pending[img]; ok {
			continue
		}
		o.pending[img] = struct{}{}
		o.order = append(o.order, img)
		metrics.PendingLazyImages.Inc()
	}
}

// Unobserve stops watching img without resolving it.
func (o *Observer) Unobserve(img *html.Node) {
	if _, ok := o.pending[img]; ok {
		delete(o.pending, img)
		metrics.PendingLazyImages.Dec()
	}
}

// Pending returns the number of observed placeholders.
func (o *Observer) Pending() int { return len(o.pending) }

// Intersect resolves every observed placeholder located within the viewport
// (expanded by the margin) and stops observing it. Resolved images are
// returned in observation order.
func (o *Observer) Intersect(viewport Rect, locate Locator) []*html.Node {
	area := viewport.Expand(o.margin)
	var resolved []*html.Node
	kept := o.order[:0]
	for _, img := range o.order {
		if _, ok := o.pending[img]; !ok {
			continue
		}
		r, ok := locate(img)
		if !ok || !r.Intersects(area) {
			kept = append(kept, img)
			continue
		}
		delete(o.pending, img)
		metrics.PendingLazyImages.Dec()
		if rewrite.Resolve(img) {
			resolved = append(resolved, img)
		}
	}
	o.order = kept
	metrics.LazyImagesResolved.Add(float64(len(resolved)))
	return resolved
}

// Disconnect drops every observation. Placeholders keep their deferred source.
func (o *Observer) Disconnect() {
	metrics.PendingLazyImages.Sub(float64(len(o.pending)))
	o.pending = make(map[*html.Node]struct{})
	o.order = nil
}

// Registry holds the single active observer.
type Registry struct {
	mu      sync.Mutex
	current *Observer
}

// Attach creates the observer for container, disconnecting the previous one,
// and starts observing the container's existing pending placeholders.
func (r *Registry) Attach(container *html.Node, margin int) *Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Disconnect()
	}
	obs := newObserver(container, margin)
	rewrite.Walk(container, func(n *html.Node) rewrite.WalkAction {
		if rewrite.IsPending(n) {
			obs.Observe(n)
			return rewrite.Skip
		}
		return rewrite.Descend
	})
	logger.Debug().Int("initial_images", obs.Pending()).Msg("Lazy image observer attached")
	r.current = obs
	return obs
}

// Current returns the active observer, or nil before the first Attach.
func (r *Registry) Current() *Observer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Detach disconnects and forgets the active observer.
func (r *Registry) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		r.current.Disconnect()
		r.current = nil
	}
}
