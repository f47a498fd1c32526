package testutil

import (
	"fmt"

	"github.com/ChristianF88/burstx/tree"
	"pgregory.net/rapid"
)

// Syllables keeps generated names short so random keywords hit often.
var Syllables = []string{"lap", "top", "desk", "Phone", "tab", "Wash", "fur", "sofa", "ele", "CAM"}

// Forest generates valid forests (unique sibling names, non-negative values)
// up to maxDepth levels deep.
func Forest(maxDepth int) *rapid.Generator[[]*tree.Node] {
	return rapid.Custom(func(t *rapid.T) []*tree.Node {
		return drawLevel(t, 0, maxDepth)
	})
}

// Keyword generates search keywords, including blank ones.
func Keyword() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.SampledFrom(Syllables),
		rapid.SampledFrom([]string{"", " ", "  lap ", "O", "e", "zzz"}),
	)
}

func drawLevel(t *rapid.T, depth, maxDepth int) []*tree.Node {
	width := rapid.IntRange(0, 4).Draw(t, fmt.Sprintf("width%d", depth))
	nodes := make([]*tree.Node, 0, width)
	for i := 0; i < width; i++ {
		name := rapid.SampledFrom(Syllables).Draw(t, "name")
		// suffix keeps siblings unique
		name = fmt.Sprintf("%s%d", name, i)

		node := &tree.Node{Name: name}
		if depth+1 < maxDepth && rapid.Bool().Draw(t, "branch") {
			node.Children = drawLevel(t, depth+1, maxDepth)
		}
		if len(node.Children) == 0 || rapid.IntRange(0, 4).Draw(t, "explicit") == 0 {
			if rapid.IntRange(0, 5).Draw(t, "hasValue") > 0 {
				v := float64(rapid.IntRange(0, 1000).Draw(t, "value"))
				node.Value = &v
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}
