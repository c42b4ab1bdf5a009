// Package rewrite replaces emote tokens in chat message markup with lazy
// placeholder images.
package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/haytac/lounge-emotes/pkg/interfaces"
	"github.com/kyokomi/emoji/v2"
	"golang.org/x/net/html"
)

// Options tunes the rewriter.
type Options struct {
	// Size is the CSS height given to every placeholder.
	Size string
	// UnicodeShortcodes expands unmatched :shortcode: tokens to unicode emoji.
	UnicodeShortcodes bool
}

// Rewriter turns matching tokens of text nodes into placeholder images.
type Rewriter struct {
	lookup interfaces.EmoteLookup
	opts   Options
}

// New returns a Rewriter resolving names through lookup.
func New(lookup interfaces.EmoteLookup, opts Options) *Rewriter {
	if opts.Size == "" {
		opts.Size = "1.5em"
	}
	return &Rewriter{lookup: lookup, opts: opts}
}

// SetSize changes the height used for placeholders created from now on.
func (r *Rewriter) SetSize(size string) {
	if size != "" {
		r.opts.Size = size
	}
}

// Rewrite processes the subtree rooted at n and returns every placeholder it
// created. Links, images and rendered emotes are left untouched. Nothing is
// done while the lookup is empty.
func (r *Rewriter) Rewrite(n *html.Node) []*html.Node {
	if n == nil || r.lookup == nil || r.lookup.Len() == 0 {
		return nil
	}
	var created []*html.Node
	Walk(n, func(node *html.Node) WalkAction {
		switch node.Type {
		case html.TextNode:
			created = append(created, r.rewriteText(node)...)
		case html.ElementNode:
			if node.Data == "img" || node.Data == "a" || HasClass(node, EmoteClass) {
				return Skip
			}
		}
		return Descend
	})
	return created
}

func (r *Rewriter) rewriteText(n *html.Node) []*html.Node {
	if n.Parent == nil || strings.TrimSpace(n.Data) == "" {
		return nil
	}

	var (
		out      []*html.Node
		images   []*html.Node
		pending  strings.Builder
		expanded bool
	)
	flush := func() {
		if pending.Len() > 0 {
			out = append(out, &html.Node{Type: html.TextNode, Data: pending.String()})
			pending.Reset()
		}
	}
	for _, tok := range SplitTokens(n.Data) {
		if url, ok := r.lookup.Get(tok); ok {
			flush()
			img := NewPlaceholder(tok, url, r.opts.Size)
			out = append(out, img)
			images = append(images, img)
			continue
		}
		if r.opts.UnicodeShortcodes {
			if e, ok := shortcode(tok); ok {
				pending.WriteString(e)
				expanded = true
				continue
			}
		}
		pending.WriteString(tok)
	}

	if len(images) == 0 {
		if expanded {
			n.Data = pending.String()
		}
		return nil
	}
	flush()
	parent := n.Parent
	for _, node := range out {
		parent.InsertBefore(node, n)
	}
	parent.RemoveChild(n)
	return images
}

func shortcode(tok string) (string, bool) {
	if len(tok) < 3 || tok[0] != ':' || tok[len(tok)-1] != ':' {
		return "", false
	}
	e, ok := emoji.CodeMap()[tok]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(e), true
}

// SplitTokens splits s into alternating runs of non-space and space
// characters. Joining the result yields s unchanged.
func SplitTokens(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, w := 0, 0; i < len(s); i += w {
		r, width := utf8.DecodeRuneInString(s[i:])
		w = width
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
			inSpace = space
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
