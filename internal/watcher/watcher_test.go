package watcher

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/haytac/lounge-emotes/internal/catalog"
	"github.com/haytac/lounge-emotes/internal/config"
	"github.com/haytac/lounge-emotes/internal/lazyload"
	"github.com/haytac/lounge-emotes/internal/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const chatPage = `<html><body>
<div class="chat-content"><div class="chat"><div class="messages">
<div id="msg-1" class="msg"><span class="from">alice</span><span class="content">hello pogU</span></div>
<div id="msg-2" class="msg"><span class="content">nothing here</span></div>
<div id="msg-3" class="msg"><span class="from">bob</span></div>
<div class="date-marker-container"></div>
</div></div></div>
<textarea id="input"></textarea>
</body></html>`

type fixture struct {
	doc       *goquery.Document
	container *html.Node
	table     *catalog.Table
	registry  *lazyload.Registry
	watcher   *Watcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(chatPage))
	require.NoError(t, err)
	container := doc.Find(DefaultSelectors.Container)
	require.Equal(t, 1, container.Length())

	table := catalog.NewTable()
	table.Add("pogU", "https://cdn.7tv.app/emote/1/1x.webp")
	table.Add("KEKW", "https://cdn.7tv.app/emote/2/1x.webp")

	registry := &lazyload.Registry{}
	w, err := New(rewrite.New(table, rewrite.Options{}), table, registry, config.Selectors{})
	require.NoError(t, err)
	return &fixture{doc: doc, container: container.Get(0), table: table, registry: registry, watcher: w}
}

func newMessage(t *testing.T, id, text string) *html.Node {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(`<div id="`+id+`"><span class="content">`+text+`</span></div>`),
		&html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	return nodes[0]
}

func TestNew_InvalidSelector(t *testing.T) {
	_, err := New(nil, nil, &lazyload.Registry{}, config.Selectors{Message: "div[["})
	assert.Error(t, err)
}

func TestProcessExisting(t *testing.T) {
	f := newFixture(t)

	created := f.watcher.ProcessExisting(f.container)
	require.Len(t, created, 1)
	assert.Equal(t, "https://cdn.7tv.app/emote/1/1x.webp", rewrite.DeferredSrc(created[0]))

	assert.True(t, f.doc.Find("#msg-1").HasClass(ProcessedClass))
	assert.True(t, f.doc.Find("#msg-2").HasClass(ProcessedClass), "messages without emotes are marked too")
	assert.False(t, f.doc.Find("#msg-3").HasClass(ProcessedClass), "messages without a text element stay unprocessed")
}

func TestProcessExisting_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.watcher.ProcessExisting(f.container)
	first, err := f.doc.Html()
	require.NoError(t, err)

	assert.Empty(t, f.watcher.ProcessExisting(f.container))
	second, err := f.doc.Html()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHandle_RequiresObserver(t *testing.T) {
	f := newFixture(t)
	msg := newMessage(t, "msg-10", "KEKW")
	f.container.AppendChild(msg)

	assert.Empty(t, f.watcher.Handle([]Mutation{{Added: []*html.Node{msg}}}))
	assert.False(t, rewrite.HasClass(msg, ProcessedClass))
}

func TestHandle_RequiresCatalog(t *testing.T) {
	f := newFixture(t)
	f.registry.Attach(f.container, 0)
	f.table.Reset()

	msg := newMessage(t, "msg-10", "KEKW")
	f.container.AppendChild(msg)
	assert.Empty(t, f.watcher.Handle([]Mutation{{Added: []*html.Node{msg}}}))
}

func TestHandle_AddedMessagesAndWrappers(t *testing.T) {
	f := newFixture(t)
	obs := f.registry.Attach(f.container, 0)

	msg := newMessage(t, "msg-10", "KEKW pogU")
	wrapper := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	inner := newMessage(t, "msg-11", "pogU")
	wrapper.AppendChild(inner)
	text := &html.Node{Type: html.TextNode, Data: "\n"}
	for _, n := range []*html.Node{msg, wrapper, text} {
		f.container.AppendChild(n)
	}

	created := f.watcher.Handle([]Mutation{{Added: []*html.Node{msg, text}}, {Added: []*html.Node{wrapper}}})
	require.Len(t, created, 3)
	assert.Equal(t, 3, obs.Pending(), "placeholders are handed to the lazy observer")
	assert.True(t, rewrite.HasClass(msg, ProcessedClass))
	assert.True(t, rewrite.HasClass(inner, ProcessedClass))
	assert.False(t, rewrite.HasClass(wrapper, ProcessedClass))

	assert.Empty(t, f.watcher.Handle([]Mutation{{Added: []*html.Node{msg, wrapper}}}), "processed messages are skipped")
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	obs := f.registry.Attach(f.container, 0)

	batches := make(chan []Mutation)
	done := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		f.watcher.Run(ctx, batches)
		close(done)
	}()

	msg := newMessage(t, "msg-20", "pogU")
	f.container.AppendChild(msg)
	batches <- []Mutation{{Added: []*html.Node{msg}}}
	close(batches)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel was closed")
	}
	assert.Equal(t, 1, obs.Pending())
}
