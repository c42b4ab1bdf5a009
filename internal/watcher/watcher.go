// Package watcher processes chat messages as they are added to the message
// container.
package watcher

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/internal/lazyload"
	"github.com/haytac/lounge-emotes/internal/logging"
	"github.com/haytac/lounge-emotes/internal/metrics"
	"github.com/haytac/lounge-emotes/internal/rewrite"
	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// ProcessedClass marks messages the rewriter has already handled.
const ProcessedClass = "seventv-processed"

// DefaultSelectors match the chat markup of The Lounge.
var DefaultSelectors = config.Selectors{
	Container: ".chat-content > .chat > .messages",
	Message:   `div[id^="msg-"]`,
	Text:      "span.content",
	Input:     "#input",
}

// Mutation is one batch entry of direct children added to the container.
type Mutation struct {
	Added []*html.Node
}

// Watcher rewrites every unprocessed message it is shown and hands the
// resulting placeholders to the active lazy observer.
type Watcher struct {
	rewriter *rewrite.Rewriter
	lookup   interfaces.EmoteLookup
	registry *lazyload.Registry

	message     cascadia.Selector
	text        cascadia.Selector
	unprocessed cascadia.Selector
	log         zerolog.Logger
}

// New compiles the message and text selectors. Empty selectors fall back to
// DefaultSelectors.
func New(rw *rewrite.Rewriter, lookup interfaces.EmoteLookup, registry *lazyload.Registry, sel config.Selectors) (*Watcher, error) {
	if sel.Message == "" {
		sel.Message = DefaultSelectors.Message
	}
	if sel.Text == "" {
		sel.Text = DefaultSelectors.Text
	}
	message, err := cascadia.Compile(sel.Message)
	if err != nil {
		return nil, fmt.Errorf("message selector %q: %w", sel.Message, err)
	}
	text, err := cascadia.Compile(sel.Text)
	if err != nil {
		return nil, fmt.Errorf("text selector %q: %w", sel.Text, err)
	}
	unprocessed, err := cascadia.Compile(sel.Message + ":not(." + ProcessedClass + ")")
	if err != nil {
		return nil, fmt.Errorf("message selector %q: %w", sel.Message, err)
	}
	return &Watcher{
		rewriter:    rw,
		lookup:      lookup,
		registry:    registry,
		message:     message,
		text:        text,
		unprocessed: unprocessed,
		log:         logging.Component("watcher"),
	}, nil
}

func (w *Watcher) ready() bool {
	return w.lookup != nil && w.lookup.Len() > 0 && w.registry.Current() != nil
}

// ProcessExisting rewrites every unprocessed message under container.
func (w *Watcher) ProcessExisting(container *html.Node) []*html.Node {
	if container == nil || w.lookup == nil || w.lookup.Len() == 0 {
		return nil
	}
	var created []*html.Node
	goquery.NewDocumentFromNode(container).FindMatcher(w.unprocessed).Each(func(_ int, s *goquery.Selection) {
		created = append(created, w.processMessage(s)...)
	})
	w.log.Debug().Int("placeholders", len(created)).Msg("Existing messages processed")
	return created
}

// Handle processes a batch of container mutations in order. Each added
// element is either a message itself or may contain messages. Nothing happens
// until the catalog is loaded and a lazy observer is attached.
func (w *Watcher) Handle(batch []Mutation) []*html.Node {
	if !w.ready() {
		return nil
	}
	var created []*html.Node
	for _, m := range batch {
		for _, n := range m.Added {
			if n == nil || n.Type != html.ElementNode {
				continue
			}
			s := goquery.NewDocumentFromNode(n).Selection
			if w.message.Match(n) {
				if !s.HasClass(ProcessedClass) {
					created = append(created, w.processMessage(s)...)
				}
				continue
			}
			s.FindMatcher(w.unprocessed).Each(func(_ int, msg *goquery.Selection) {
				created = append(created, w.processMessage(msg)...)
			})
		}
	}
	if obs := w.registry.Current(); obs != nil {
		obs.Observe(created...)
	}
	return created
}

// Run handles batches in arrival order until ctx is done or batches is closed.
func (w *Watcher) Run(ctx context.Context, batches <-chan []Mutation) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-batches:
			if !ok {
				return
			}
			w.Handle(batch)
		}
	}
}

// processMessage rewrites the text element of one message. Messages without a
// text element stay unprocessed.
func (w *Watcher) processMessage(msg *goquery.Selection) []*html.Node {
	text := msg.FindMatcher(w.text).First()
	if text.Length() == 0 {
		return nil
	}
	created := w.rewriter.Rewrite(text.Get(0))
	msg.AddClass(ProcessedClass)
	metrics.MessagesRewritten.Inc()
	metrics.EmotesReplaced.Add(float64(len(created)))
	return created
}
