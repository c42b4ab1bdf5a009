package app

import (
	"context"
	"fmt"

	"github.com/haytac/lounge-emotes/internal/rewrite"
	"golang.org/x/net/html"
)

// RewriteDocument processes every message of a static page in one pass. The
// catalog is fetched when needed. Without a message container the whole
// document is searched for messages. With eager set the placeholders carry
// their real source right away. It returns the number of emotes rendered.
func (app *Application) RewriteDocument(ctx context.Context, doc *html.Node, eager bool) (int, error) {
	app.Rewriter.SetSize(app.Settings.EmoteSize(ctx))

	if !app.Catalog.Loaded() {
		if _, err := app.Catalog.FetchCatalog(ctx); err != nil {
			return 0, fmt.Errorf("loading emote catalog: %w", err)
		}
	}

	root := app.findContainer(doc)
	if root == nil {
		root = doc
	}
	created := app.Watcher.ProcessExisting(root)
	if eager {
		for _, img := range created {
			rewrite.Resolve(img)
		}
	}
	return len(created), nil
}
