package ast

import "strings"

// WalkStatus controls traversal from a Walk visitor.
type WalkStatus int

const (
	// WalkContinue descends into the node's children.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren continues the traversal without visiting children.
	WalkSkipChildren
	// WalkStop aborts the traversal entirely.
	WalkStop
)

// Walk performs a depth-first pre-order traversal, calling fn for every
// node. The table header row (when present) is visited before the data
// rows. Walk never mutates the tree.
func Walk(n *Node, fn func(*Node) WalkStatus) WalkStatus {
	if n == nil {
		return WalkContinue
	}
	switch fn(n) {
	case WalkStop:
		return WalkStop
	case WalkSkipChildren:
		return WalkContinue
	}
	if n.Header != nil {
		if Walk(n.Header, fn) == WalkStop {
			return WalkStop
		}
	}
	for _, child := range n.Children {
		if Walk(child, fn) == WalkStop {
			return WalkStop
		}
	}
	return WalkContinue
}

// PlainText returns the node's content with all markup stripped: literal
// text of every Text and Code descendant concatenated in traversal order.
// Line breaks become single spaces. Used by the renderer to size setext
// underlines and by transforms that slug heading titles.
func (n *Node) PlainText() string {
	var b strings.Builder
	Walk(n, func(node *Node) WalkStatus {
		switch node.Kind {
		case KindText, KindCode, KindMathInline:
			b.WriteString(node.Literal)
		case KindLineBreak:
			b.WriteByte(' ')
		case KindImage:
			// Alt text only; skip the destination.
		}
		return WalkContinue
	})
	return b.String()
}

// Count returns the number of nodes in the subtree, including n itself.
func (n *Node) Count() int {
	count := 0
	Walk(n, func(*Node) WalkStatus {
		count++
		return WalkContinue
	})
	return count
}

// FirstOfKind returns the first node of the given kind in traversal order,
// or nil if the subtree contains none.
func (n *Node) FirstOfKind(kind Kind) *Node {
	var found *Node
	Walk(n, func(node *Node) WalkStatus {
		if node.Kind == kind {
			found = node
			return WalkStop
		}
		return WalkContinue
	})
	return found
}
