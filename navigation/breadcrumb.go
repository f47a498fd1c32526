package navigation

import (
	"fmt"
	"strings"

	"github.com/ChristianF88/burstx/tree"
)

// Crumb is one step of the path from the root to the current level.
type Crumb struct {
	Name  string
	Level []*tree.Node
}

// Breadcrumbs rebuilds the path from the history. Entry i names the node
// whose children form history level i; entry 0 carries the root label.
func (n *Navigator) Breadcrumbs() []Crumb {
	crumbs := make([]Crumb, len(n.history))
	crumbs[0] = Crumb{Name: n.rootLabel, Level: n.history[0]}
	for i := 1; i < len(n.history); i++ {
		name := fmt.Sprintf("Level %d", i+1)
		if owner := findOwner(n.history[i-1], n.history[i]); owner != nil {
			name = owner.Name
		}
		crumbs[i] = Crumb{Name: name, Level: n.history[i]}
	}
	return crumbs
}

// BreadcrumbNames returns just the names of Breadcrumbs.
func (n *Navigator) BreadcrumbNames() []string {
	crumbs := n.Breadcrumbs()
	names := make([]string, len(crumbs))
	for i, c := range crumbs {
		names[i] = c.Name
	}
	return names
}

// BreadcrumbText joins the breadcrumb names with sep.
func (n *Navigator) BreadcrumbText(sep string) string {
	return strings.Join(n.BreadcrumbNames(), sep)
}

// findOwner returns the sibling in parent whose children hold level. A level
// pushed from an unfiltered node shares its first node pointer with the
// owner. A level pushed while a keyword was active consists of the filtered
// children of a copied node; its owner is the sibling whose children
// structurally contain every node of level, in order.
func findOwner(parent, level []*tree.Node) *tree.Node {
	if len(level) == 0 {
		return nil
	}
	first := level[0]
	for _, candidate := range parent {
		for _, child := range candidate.Children {
			if child == first {
				return candidate
			}
		}
	}
	for _, candidate := range parent {
		if containsInOrder(candidate.Children, level) {
			return candidate
		}
	}
	return nil
}

func containsInOrder(children, level []*tree.Node) bool {
	j := 0
	for _, child := range children {
		if j < len(level) && derivedFrom(child, level[j]) {
			j++
		}
	}
	return j == len(level)
}

// derivedFrom reports whether node is orig or a filtered copy of it. Filter
// copies always keep at least one child and bottom out in original pointers.
func derivedFrom(orig, node *tree.Node) bool {
	if orig == node {
		return true
	}
	if orig.Name != node.Name || len(node.Children) == 0 {
		return false
	}
	return containsInOrder(orig.Children, node.Children)
}
