package rewrite

import (
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// EmoteClass marks every rendered emote image.
	EmoteClass = "seventv-emote"
	// LazyClass marks placeholders whose real source has not been swapped in.
	LazyClass = "seventv-emote-lazy"
	// PlaceholderSrc is a 1x1 transparent GIF.
	PlaceholderSrc = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	// DeferredSrcAttr holds the real image URL of a placeholder.
	DeferredSrcAttr = "data-src"
)

// NewPlaceholder creates a lazy emote image for name.
func NewPlaceholder(name, url, size string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "src", Val: PlaceholderSrc},
			{Key: DeferredSrcAttr, Val: url},
			{Key: "alt", Val: name},
			{Key: "title", Val: name},
			{Key: "class", Val: EmoteClass + " " + LazyClass},
			{Key: "style", Val: fmt.Sprintf("height: %s; vertical-align: middle; margin: 0 1px;", size)},
		},
	}
}

// IsEmote reports whether n is an emote image created by the rewriter.
func IsEmote(n *html.Node) bool {
	return HasClass(n, EmoteClass)
}

// IsPending reports whether n is a placeholder still waiting for its source.
func IsPending(n *html.Node) bool {
	return IsEmote(n) && HasClass(n, LazyClass)
}

// DeferredSrc returns the real image URL carried by a placeholder.
func DeferredSrc(n *html.Node) string {
	v, _ := Attr(n, DeferredSrcAttr)
	return v
}

// Resolve swaps the real source into a placeholder. It reports false when
// n carries no deferred source.
func Resolve(n *html.Node) bool {
	s := selection(n)
	src, _ := s.Attr(DeferredSrcAttr)
	if src == "" {
		return false
	}
	s.SetAttr("src", src).RemoveClass(LazyClass)
	return true
}
