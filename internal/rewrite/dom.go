package rewrite

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func selection(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	return selection(n).Attr(key)
}

// SetAttr sets (or adds) attribute key on n.
func SetAttr(n *html.Node, key, val string) {
	selection(n).SetAttr(key, val)
}

// HasClass reports whether n carries class name.
func HasClass(n *html.Node, name string) bool {
	return n != nil && n.Type == html.ElementNode && selection(n).HasClass(name)
}

// RemoveClass drops class name from n.
func RemoveClass(n *html.Node, name string) {
	selection(n).RemoveClass(name)
}

// PlainText returns the text of root with emote images replaced by their alt text.
func PlainText(root *html.Node) string {
	var sb strings.Builder
	Walk(root, func(n *html.Node) WalkAction {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "img":
			if alt, ok := Attr(n, "alt"); ok {
				sb.WriteString(alt)
			}
			return Skip
		}
		return Descend
	})
	return sb.String()
}
