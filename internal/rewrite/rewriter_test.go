package rewrite

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type mapLookup map[string]string

func (m mapLookup) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapLookup) Len() int { return len(m) }

func (m mapLookup) Names() []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var emotes = mapLookup{
	"pogU":  "https://cdn.7tv.app/emote/1/1x.webp",
	"KEKW":  "https://cdn.7tv.app/emote/2/1x.webp",
	"sadge": "https://cdn.7tv.app/emote/3/1x.webp",
}

// parseFragment parses markup in a <div> context and returns the wrapper.
func parseFragment(t *testing.T, markup string) *html.Node {
	t.Helper()
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	require.NoError(t, err)
	for _, n := range nodes {
		ctx.AppendChild(n)
	}
	return ctx
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		require.NoError(t, html.Render(&sb, c))
	}
	return sb.String()
}

func TestSplitTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"pogU", []string{"pogU"}},
		{"hello pogU", []string{"hello", " ", "pogU"}},
		{"  a\t\tb \n", []string{"  ", "a", "\t\t", "b", " \n"}},
		{"ñaño KEKW", []string{"ñaño", " ", "KEKW"}},
	}
	for _, tt := range tests {
		got := SplitTokens(tt.in)
		assert.Equal(t, tt.want, got, "%q", tt.in)
		assert.Equal(t, tt.in, strings.Join(got, ""))
	}
}

func TestRewrite_ReplacesExactTokens(t *testing.T) {
	root := parseFragment(t, `<span class="content">hello pogU  world KEKW pogu pogU!</span>`)
	r := New(emotes, Options{Size: "2em"})

	imgs := r.Rewrite(root)
	require.Len(t, imgs, 2)

	assert.Equal(t, "pogU", imgs[0].Attr[2].Val)
	assert.Equal(t, emotes["pogU"], DeferredSrc(imgs[0]))
	src, _ := Attr(imgs[0], "src")
	assert.Equal(t, PlaceholderSrc, src)
	title, _ := Attr(imgs[1], "title")
	assert.Equal(t, "KEKW", title)
	style, _ := Attr(imgs[1], "style")
	assert.Contains(t, style, "height: 2em;")
	assert.True(t, IsPending(imgs[0]))

	assert.Equal(t, "hello pogU  world KEKW pogu pogU!", PlainText(root), "order and whitespace are preserved")

	span := root.FirstChild
	var kinds []string
	for c := span.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			kinds = append(kinds, "text:"+c.Data)
		} else {
			kinds = append(kinds, c.Data)
		}
	}
	assert.Equal(t, []string{"text:hello ", "img", "text:  world ", "img", "text: pogu pogU!"}, kinds)
}

func TestRewrite_SkipsLinksImagesAndEmotes(t *testing.T) {
	root := parseFragment(t, `<span>sadge <a href="https://x.test">pogU</a> <img alt="KEKW"><b>KEKW</b></span>`)
	r := New(emotes, Options{})

	imgs := r.Rewrite(root)
	require.Len(t, imgs, 2)
	assert.Equal(t, "sadge", imgs[0].Attr[2].Val)
	assert.Equal(t, "KEKW", imgs[1].Attr[2].Val)
	assert.Contains(t, render(t, root), `<a href="https://x.test">pogU</a>`)

	again := r.Rewrite(root)
	assert.Empty(t, again, "rendered emotes are not processed twice")
}

func TestRewrite_NoMatchLeavesTextUntouched(t *testing.T) {
	const msg = "  nothing\tto see  here \n"
	root := parseFragment(t, "<span>"+msg+"</span>")
	before := root.FirstChild.FirstChild

	imgs := New(emotes, Options{}).Rewrite(root)
	assert.Empty(t, imgs)
	assert.Same(t, before, root.FirstChild.FirstChild, "text node is not replaced")
	assert.Equal(t, msg, PlainText(root))
}

func TestRewrite_EmptyLookup(t *testing.T) {
	root := parseFragment(t, "<span>pogU</span>")
	assert.Empty(t, New(mapLookup{}, Options{}).Rewrite(root))
	assert.Empty(t, New(nil, Options{}).Rewrite(root))
	assert.Equal(t, "<span>pogU</span>", render(t, root))
}

func TestRewrite_UnicodeShortcodes(t *testing.T) {
	root := parseFragment(t, "<span>:smile: pogU :notacode:</span>")
	imgs := New(emotes, Options{UnicodeShortcodes: true}).Rewrite(root)
	require.Len(t, imgs, 1)

	text := PlainText(root)
	assert.NotContains(t, text, ":smile:")
	assert.Contains(t, text, ":notacode:")
	assert.Contains(t, text, " pogU ")

	plain := parseFragment(t, "<span>:smile:</span>")
	assert.Empty(t, New(emotes, Options{}).Rewrite(plain))
	assert.Equal(t, ":smile:", PlainText(plain))
}

func TestWalk_DeepTreeAndOrder(t *testing.T) {
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	cur := root
	for i := 0; i < 100000; i++ {
		child := &html.Node{Type: html.ElementNode, DataAtom: atom.Span, Data: "span"}
		cur.AppendChild(child)
		cur = child
	}
	cur.AppendChild(&html.Node{Type: html.TextNode, Data: "KEKW"})

	imgs := New(emotes, Options{}).Rewrite(root)
	assert.Len(t, imgs, 1)

	ordered := parseFragment(t, "<p>a<b>b</b>c</p>d")
	var seen []string
	Walk(ordered, func(n *html.Node) WalkAction {
		if n.Type == html.TextNode {
			seen = append(seen, n.Data)
		}
		return Descend
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, seen)
}

func TestResolve(t *testing.T) {
	img := NewPlaceholder("pogU", "https://cdn/1x.webp", "1.5em")
	assert.True(t, Resolve(img))
	src, _ := Attr(img, "src")
	assert.Equal(t, "https://cdn/1x.webp", src)
	assert.False(t, IsPending(img))
	assert.True(t, IsEmote(img))

	bare := &html.Node{Type: html.ElementNode, DataAtom: atom.Img, Data: "img"}
	assert.False(t, Resolve(bare))
}

func TestClassAndAttrHelpers(t *testing.T) {
	img := NewPlaceholder("KEKW", "https://cdn/2/1x.webp", "2em")
	assert.True(t, HasClass(img, EmoteClass))
	assert.True(t, HasClass(img, LazyClass))
	assert.False(t, HasClass(img, "seventv"), "class names match whole words")

	RemoveClass(img, LazyClass)
	assert.True(t, IsEmote(img))
	assert.False(t, IsPending(img))

	SetAttr(img, "title", "KEKW!")
	title, ok := Attr(img, "title")
	assert.True(t, ok)
	assert.Equal(t, "KEKW!", title)
	_, ok = Attr(img, "width")
	assert.False(t, ok)

	text := &html.Node{Type: html.TextNode, Data: "KEKW"}
	assert.False(t, HasClass(text, EmoteClass))
	assert.False(t, IsEmote(nil))
}
