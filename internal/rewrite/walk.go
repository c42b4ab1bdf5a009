package rewrite

import "golang.org/x/net/html"

// WalkAction tells Walk whether to visit a node's children.
type WalkAction int

const (
	Descend WalkAction = iota
	Skip
)

// Walk visits root and its descendants in document order using an explicit
// stack, so arbitrarily deep markup cannot exhaust the goroutine stack.
// Children are captured before visit returns, which lets visit replace the
// node it was handed.
func Walk(root *html.Node, visit func(n *html.Node) WalkAction) {
	if root == nil {
		return
	}
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		first := len(stack)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			stack = append(stack, c)
		}
		if visit(n) == Skip {
			stack = stack[:first]
			continue
		}
		// reverse so the first child is popped first
		for i, j := first, len(stack)-1; i < j; i, j = i+1, j-1 {
			stack[i], stack[j] = stack[j], stack[i]
		}
	}
}
