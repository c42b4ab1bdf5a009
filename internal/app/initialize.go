package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/haytac/lounge-emotes/internal/watcher"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

var (
	// ErrHostNotReady is returned when the chat container or input is not
	// rendered yet. A retry has been scheduled.
	ErrHostNotReady = errors.New("chat container or input not found")
	// ErrInitializing is returned when Initialize is already running.
	ErrInitializing = errors.New("initialization already in progress")
)

const (
	hideEmojiStyleID = "seventv-hide-emoji-picker"
	hideEmojiCSS     = "ul.textcomplete-menu[data-strategy='emoji'] { display: none !important; }"
)

// Initialize attaches the pipeline to host: it loads the display size,
// fetches the catalog unless a loaded one is at hand, then processes existing
// messages and starts watching the container. A failed catalog fetch is
// returned as is and not retried.
func (app *Application) Initialize(ctx context.Context, host Host) error {
	if !app.initializing.CompareAndSwap(false, true) {
		log.Debug().Msg("Initialization already in progress, skipping")
		return ErrInitializing
	}
	defer app.initializing.Store(false)

	app.Rewriter.SetSize(app.Settings.EmoteSize(ctx))

	if !app.Catalog.Loaded() {
		if _, err := app.Catalog.FetchCatalog(ctx); err != nil {
			return fmt.Errorf("loading emote catalog: %w", err)
		}
	}

	doc := host.Document()
	container := app.findContainer(doc)
	input := host.Input()
	if container == nil || input == nil {
		log.Warn().
			Bool("container_found", container != nil).
			Bool("input_found", input != nil).
			Dur("retry_in", app.retryDelay()).
			Msg("Chat elements not found, retrying later")
		app.Catalog.Invalidate()
		app.scheduleRetry(host)
		return ErrHostNotReady
	}

	app.Picker.SetLookup(app.Catalog.Table())
	app.Picker.Hide()

	created := app.Watcher.ProcessExisting(container)
	app.Registry.Attach(container, max(app.Config.LazyMargin, 0))
	app.container = container
	injectHideEmojiStyle(doc)

	log.Info().
		Int("emotes", app.Catalog.Table().Len()).
		Int("placeholders", len(created)).
		Msg("Emote pipeline attached to chat")
	return nil
}

// Container returns the message container found by the last successful
// Initialize.
func (app *Application) Container() *html.Node { return app.container }

// SetRetryHandler replaces what runs when a scheduled retry fires.
func (app *Application) SetRetryHandler(fn func(Host)) {
	app.retryMu.Lock()
	defer app.retryMu.Unlock()
	app.onRetry = fn
}

func (app *Application) scheduleRetry(host Host) {
	app.retryMu.Lock()
	defer app.retryMu.Unlock()
	if app.retryTimer != nil {
		app.retryTimer.Stop()
	}
	app.retryTimer = time.AfterFunc(app.retryDelay(), func() {
		app.retryMu.Lock()
		fn := app.onRetry
		app.retryMu.Unlock()
		fn(host)
	})
}

func (app *Application) findContainer(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	selector := app.Config.Selectors.Container
	if selector == "" {
		selector = watcher.DefaultSelectors.Container
	}
	sel := goquery.NewDocumentFromNode(doc).Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

func (app *Application) retryDelay() time.Duration {
	if app.Config.RetryDelay > 0 {
		return app.Config.RetryDelay
	}
	return 5 * time.Second
}

// injectHideEmojiStyle hides the host's own emoji suggestions once per document.
func injectHideEmojiStyle(doc *html.Node) {
	d := goquery.NewDocumentFromNode(doc)
	if d.Find("#"+hideEmojiStyleID).Length() > 0 {
		return
	}
	head := d.Find("head")
	if head.Length() == 0 {
		return
	}
	head.AppendHtml(`<style id="` + hideEmojiStyleID + `">` + hideEmojiCSS + `</style>`)
}
