// Package navigation holds the drill-down state of a chart: the stack of
// levels the user walked through, the search keyword and the transient
// hover/click selection. Every transition recomputes the display frame.
//
// A Navigator is not safe for concurrent use; callers serialize events.
package navigation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/tree"
	"go.uber.org/zap"
)

const DefaultRootLabel = "Root"

var (
	ErrIndexOutOfRange      = errors.New("segment index out of range")
	ErrBreadcrumbOutOfRange = errors.New("breadcrumb index out of range")
	ErrUnknownEvent         = errors.New("unknown event kind")
)

// Option configures a Navigator.
type Option func(*Navigator)

// WithPalette sets the palette used for frame colors.
func WithPalette(p *palette.Palette) Option {
	return func(n *Navigator) {
		if p != nil {
			n.builder = analysis.NewBuilder(p)
		}
	}
}

// WithRootLabel names the first breadcrumb.
func WithRootLabel(label string) Option {
	return func(n *Navigator) {
		if label != "" {
			n.rootLabel = label
		}
	}
}

// WithLogger sets the logger transitions are reported to at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.log = logger
		}
	}
}

// Navigator is the drill-down state machine.
type Navigator struct {
	root      []*tree.Node
	history   [][]*tree.Node
	keyword   string
	highlight int // -1 when nothing is highlighted
	hoverName string
	selected  *tree.Node

	frame     analysis.Frame
	builder   analysis.Builder
	rootLabel string
	log       *zap.Logger
}

// New validates root and returns a Navigator positioned at it.
func New(root []*tree.Node, opts ...Option) (*Navigator, error) {
	if err := tree.Validate(root); err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}

	n := &Navigator{
		root:      root,
		builder:   analysis.NewBuilder(nil),
		rootLabel: DefaultRootLabel,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.Reset()
	return n, nil
}

// Search sets the keyword used to filter the current level.
func (n *Navigator) Search(text string) {
	n.keyword = text
	n.log.Debug("search", zap.String("keyword", text))
	n.refresh()
}

// Click selects the segment at index and drills into it when it has
// children. Clicking a leaf only records the selection.
func (n *Navigator) Click(index int) (bool, error) {
	if index < 0 || index >= n.frame.Len() {
		return false, fmt.Errorf("%w: %d (segments: %d)", ErrIndexOutOfRange, index, n.frame.Len())
	}

	node := n.frame.Nodes[index]
	n.selected = node
	if !tree.HasChildren(node) {
		n.log.Debug("click on leaf", zap.String("node", node.Name))
		return false, nil
	}

	n.history = append(n.history, node.Children)
	n.clearHighlight()
	n.log.Debug("drill down", zap.String("node", node.Name), zap.Int("depth", n.Depth()))
	n.refresh()
	return true, nil
}

// Hover highlights the segment at index. Any out-of-range index clears the
// highlight.
func (n *Navigator) Hover(index int) {
	if index < 0 || index >= n.frame.Len() {
		n.clearHighlight()
		return
	}
	n.highlight = index
	n.hoverName = n.frame.Labels[index]
}

// Back returns to the previous level. It reports false at the root.
func (n *Navigator) Back() bool {
	if len(n.history) <= 1 {
		return false
	}
	n.truncate(len(n.history) - 1)
	n.log.Debug("back", zap.Int("depth", n.Depth()))
	return true
}

// Jump truncates the history so that breadcrumb i becomes the current level.
func (n *Navigator) Jump(i int) error {
	if i < 0 || i >= len(n.history) {
		return fmt.Errorf("%w: %d (breadcrumbs: %d)", ErrBreadcrumbOutOfRange, i, len(n.history))
	}
	if i == len(n.history)-1 {
		return nil
	}
	n.truncate(i + 1)
	n.log.Debug("jump", zap.Int("depth", n.Depth()))
	return nil
}

// Reset returns to the initial state: root level, no keyword, no highlight
// and no selection.
func (n *Navigator) Reset() {
	n.history = [][]*tree.Node{n.root}
	n.keyword = ""
	n.selected = nil
	n.clearHighlight()
	n.refresh()
}

func (n *Navigator) truncate(length int) {
	// Clip so a later append allocates instead of overwriting dropped levels.
	n.history = slices.Clip(n.history[:length])
	n.selected = nil
	n.clearHighlight()
	n.refresh()
}

func (n *Navigator) clearHighlight() {
	n.highlight = -1
	n.hoverName = ""
}

// refresh rebuilds the frame. Level changes clear the highlight before
// calling it; within a level it survives only while the same label stays at
// its index.
func (n *Navigator) refresh() {
	n.frame = n.builder.Build(n.Level(), n.keyword, n.Depth())
	if n.highlight >= 0 {
		if n.highlight >= n.frame.Len() || n.frame.Labels[n.highlight] != n.hoverName {
			n.clearHighlight()
		}
	}
}

// Frame returns the current display frame.
func (n *Navigator) Frame() analysis.Frame {
	return n.frame
}

// Summary returns the statistics of the current frame.
func (n *Navigator) Summary() analysis.Summary {
	return n.frame.Summary()
}

// Root returns the tree the navigator was built with.
func (n *Navigator) Root() []*tree.Node {
	return n.root
}

// Level returns the sibling slice currently viewed, before filtering.
func (n *Navigator) Level() []*tree.Node {
	return n.history[len(n.history)-1]
}

// History returns a copy of the level stack.
func (n *Navigator) History() [][]*tree.Node {
	return slices.Clone(n.history)
}

// Depth is 0 at the root level.
func (n *Navigator) Depth() int {
	return len(n.history) - 1
}

// LevelName returns "Root Level" at the root and "Level N" below it, where N
// counts levels starting at 1 for the root.
func (n *Navigator) LevelName() string {
	if len(n.history) == 1 {
		return "Root Level"
	}
	return fmt.Sprintf("Level %d", len(n.history))
}

// Keyword returns the raw search text.
func (n *Navigator) Keyword() string {
	return n.keyword
}

// Highlighted returns the highlighted segment index, if any.
func (n *Navigator) Highlighted() (int, bool) {
	return n.highlight, n.highlight >= 0
}

// Selected returns the last clicked node, or nil.
func (n *Navigator) Selected() *tree.Node {
	return n.selected
}

// IndexOf returns the index of the first segment named name in the current
// frame, or -1.
func (n *Navigator) IndexOf(name string) int {
	return slices.Index(n.frame.Labels, name)
}

// State is a comparable snapshot of everything a transition can change.
type State struct {
	History   [][]*tree.Node
	Keyword   string
	Highlight int
	Selected  *tree.Node
	Frame     analysis.Frame
}

// State returns a snapshot of the navigator.
func (n *Navigator) State() State {
	return State{
		History:   n.History(),
		Keyword:   n.keyword,
		Highlight: n.highlight,
		Selected:  n.selected,
		Frame:     n.frame,
	}
}
