package analysis

import (
	"strings"

	"github.com/ChristianF88/burstx/tree"
)

// FilterByKeyword keeps the nodes whose name contains keyword
// (case-insensitive) together with every ancestor of such a node.
//
// A node that matches by its own name is returned as-is, subtree included.
// A node kept only because something below it matched is copied with its
// children replaced by the filtered children. A blank keyword returns level
// itself. The input is never modified.
func FilterByKeyword(level []*tree.Node, keyword string) []*tree.Node {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return level
	}
	return filterLevel(level, needle)
}

func filterLevel(level []*tree.Node, needle string) []*tree.Node {
	filtered := make([]*tree.Node, 0, len(level))
	for _, node := range level {
		if node == nil {
			continue
		}
		if matches(node, needle) {
			filtered = append(filtered, node)
			continue
		}
		if len(node.Children) == 0 {
			continue
		}
		children := filterLevel(node.Children, needle)
		if len(children) == 0 {
			continue
		}
		filtered = append(filtered, &tree.Node{
			Name:     node.Name,
			Value:    node.Value,
			Children: children,
		})
	}
	return filtered
}

func matches(node *tree.Node, needle string) bool {
	return strings.Contains(strings.ToLower(node.Name), needle)
}
