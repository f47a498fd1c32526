package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ChristianF88/burstx/tree"
)

// CompanySales returns the sample sales hierarchy with a single root node.
func CompanySales() []*tree.Node {
	return []*tree.Node{
		tree.Branch("Company Sales",
			tree.Branch("Electronics",
				tree.Branch("Computers",
					tree.Leaf("Laptops", 120),
					tree.Leaf("Desktops", 80),
				),
				tree.Branch("Mobile Devices",
					tree.Leaf("Smartphones", 200),
					tree.Leaf("Tablets", 50),
				),
			),
			tree.Branch("Home Appliances",
				tree.Leaf("Refrigerators", 60),
				tree.Leaf("Washers", 40),
			),
			tree.Leaf("Furniture", 90),
		),
	}
}

// ElectronicsFurniture returns the two-category tree used throughout the
// scenario tests: Electronics (Laptops 120, Desktops 80) and Furniture 90.
func ElectronicsFurniture() []*tree.Node {
	return []*tree.Node{
		tree.Branch("Electronics",
			tree.Leaf("Laptops", 120),
			tree.Leaf("Desktops", 80),
		),
		tree.Leaf("Furniture", 90),
	}
}

// CompanySalesJSON is CompanySales encoded as a JSON document.
const CompanySalesJSON = `[
  {
    "name": "Company Sales",
    "children": [
      {
        "name": "Electronics",
        "children": [
          {"name": "Computers", "children": [{"name": "Laptops", "value": 120}, {"name": "Desktops", "value": 80}]},
          {"name": "Mobile Devices", "children": [{"name": "Smartphones", "value": 200}, {"name": "Tablets", "value": 50}]}
        ]
      },
      {"name": "Home Appliances", "children": [{"name": "Refrigerators", "value": 60}, {"name": "Washers", "value": 40}]},
      {"name": "Furniture", "value": 90}
    ]
  }
]`

// WriteTempFile writes content into a fresh temp dir under the given file
// name and returns the full path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file %s: %v", path, err)
	}
	return path
}

// TempFilePath returns a cross-platform temporary file path
// with the given pattern. Does not create the file.
func TempFilePath(t *testing.T, pattern string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	path := tmpFile.Name()
	tmpFile.Close()
	os.Remove(path) // Remove immediately, just need the path

	return path
}

// GenerateTree builds a complete tree with fanout children per branch and
// depth levels. Leaf values are deterministic so results are comparable.
func GenerateTree(fanout, depth int) []*tree.Node {
	var build func(prefix string, level int) []*tree.Node
	build = func(prefix string, level int) []*tree.Node {
		nodes := make([]*tree.Node, fanout)
		for i := range nodes {
			name := fmt.Sprintf("%s%d", prefix, i)
			if level == depth {
				nodes[i] = tree.Leaf(name, float64((i+1)*level))
				continue
			}
			nodes[i] = tree.Branch(name, build(name+".", level+1)...)
		}
		return nodes
	}
	if fanout <= 0 || depth <= 0 {
		return []*tree.Node{}
	}
	return build("n", 1)
}
