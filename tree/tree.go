package tree

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Node is one element of a value tree. Value is only set on nodes that carry
// an explicit measurement; otherwise the node is worth the sum of its children.
type Node struct {
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Value    *float64 `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Children []*Node  `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

var (
	ErrNilNode        = errors.New("nil node")
	ErrNegativeValue  = errors.New("negative value")
	ErrNonFiniteValue = errors.New("non-finite value")
	ErrDuplicateName  = errors.New("duplicate sibling name")
)

// PathError reports which node failed validation.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("node %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Leaf creates a node with an explicit value.
func Leaf(name string, value float64) *Node {
	v := value
	return &Node{Name: name, Value: &v}
}

// Branch creates a node whose value is derived from its children.
func Branch(name string, children ...*Node) *Node {
	return &Node{Name: name, Children: children}
}

// Aggregate returns the effective value of a node: its explicit value when
// set, else the sum of its children, else 0. The tree must be acyclic.
func Aggregate(node *Node) float64 {
	if node == nil {
		return 0
	}
	if node.Value != nil {
		return *node.Value
	}
	var sum float64
	for _, child := range node.Children {
		sum += Aggregate(child)
	}
	return sum
}

// HasChildren reports whether a node can be drilled into.
func HasChildren(node *Node) bool {
	return node != nil && len(node.Children) > 0
}

// Validate checks a sibling slice and everything below it. Explicit values
// must be finite and non-negative and sibling names must be unique.
func Validate(nodes []*Node) error {
	return validateLevel(nodes, "")
}

func validateLevel(nodes []*Node, prefix string) error {
	seen := make(map[string]struct{}, len(nodes))
	for i, node := range nodes {
		if node == nil {
			return &PathError{Path: fmt.Sprintf("%s[%d]", prefix, i), Err: ErrNilNode}
		}
		path := joinPath(prefix, node.Name)
		if _, dup := seen[node.Name]; dup {
			return &PathError{Path: path, Err: ErrDuplicateName}
		}
		seen[node.Name] = struct{}{}

		if node.Value != nil {
			v := *node.Value
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &PathError{Path: path, Err: ErrNonFiniteValue}
			}
			if v < 0 {
				return &PathError{Path: path, Err: ErrNegativeValue}
			}
		}

		if err := validateLevel(node.Children, path); err != nil {
			return err
		}
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Walk visits nodes depth-first in pre-order. Returning false from fn skips
// the node's subtree.
func Walk(nodes []*Node, fn func(node *Node, depth int) bool) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(*Node, int) bool) {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		if fn(node, depth) {
			walk(node.Children, depth+1, fn)
		}
	}
}

// Count returns the number of nodes in the forest.
func Count(nodes []*Node) int {
	n := 0
	Walk(nodes, func(*Node, int) bool {
		n++
		return true
	})
	return n
}

// MaxDepth returns the number of rings needed to draw the forest.
func MaxDepth(nodes []*Node) int {
	deepest := 0
	Walk(nodes, func(_ *Node, depth int) bool {
		if depth+1 > deepest {
			deepest = depth + 1
		}
		return true
	})
	return deepest
}

// Find resolves a slash separated path of names starting at nodes.
func Find(nodes []*Node, path string) *Node {
	var current *Node
	level := nodes
	for _, name := range strings.Split(path, "/") {
		current = nil
		for _, node := range level {
			if node != nil && node.Name == name {
				current = node
				break
			}
		}
		if current == nil {
			return nil
		}
		level = current.Children
	}
	return current
}
