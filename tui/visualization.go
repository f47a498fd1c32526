package tui

import (
	"fmt"
	"strings"

	"github.com/ChristianF88/burstx/analysis"
	"github.com/ChristianF88/burstx/navigation"
	"github.com/ChristianF88/burstx/output"
	"github.com/ChristianF88/burstx/tree"
	"github.com/rivo/tview"
)

const (
	barWidth      = 40
	nameWidth     = 20
	previewLimit  = 6
	partialBlocks = "▏▎▍▌▋▊▉"
)

// VisualizationView draws the current ring as one colored bar per segment,
// followed by a preview of the highlighted segment's children
type VisualizationView struct {
	view  *tview.TextView
	cache *VisualizationCache
}

// NewVisualizationView creates a new visualization view
func NewVisualizationView() *VisualizationView {
	v := &VisualizationView{
		cache: NewVisualizationCache(),
	}

	v.view = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.view.SetBorder(true).SetTitle(" Ring ").SetTitleAlign(tview.AlignCenter)

	return v
}

// Render shows the navigator's current ring, using the cache when possible
func (v *VisualizationView) Render(nav *navigation.Navigator) {
	key := KeyFor(nav)
	if text, ok := v.cache.Get(key); ok {
		v.view.SetText(text)
		return
	}

	highlight := -1
	if idx, ok := nav.Highlighted(); ok {
		highlight = idx
	}
	text := renderRing(nav.Frame(), highlight)
	v.cache.Put(key, text)
	v.view.SetText(text)
}

// GetView returns the tview component
func (v *VisualizationView) GetView() *tview.TextView {
	return v.view
}

// renderRing creates the bar text of a frame
func renderRing(frame analysis.Frame, highlight int) string {
	var content strings.Builder

	if frame.Len() == 0 {
		content.WriteString("[yellow]No segments match the current search.[white]\n")
		return content.String()
	}

	content.WriteString(fmt.Sprintf("[white::b]%d segments, total %s[white::-]\n\n",
		frame.Len(), output.FormatValue(frame.Total())))

	for i := range frame.Labels {
		marker := "  "
		color := frame.Colors[i]
		if i == highlight {
			marker = "▶ "
			color = frame.HoverColors[i]
		}
		share := frame.Percent(i) / 100
		content.WriteString(fmt.Sprintf("%s[%s]%s[-] %s %s [dim](%.1f%%)[-]\n",
			marker,
			color,
			bar(share, barWidth),
			padName(frame.Labels[i], nameWidth),
			output.FormatValue(frame.Values[i]),
			share*100))
	}

	if highlight >= 0 && highlight < frame.Len() {
		renderPreview(&content, frame.Nodes[highlight])
	}

	return content.String()
}

// renderPreview lists the next ring below node
func renderPreview(content *strings.Builder, node *tree.Node) {
	if !tree.HasChildren(node) {
		content.WriteString(fmt.Sprintf("\n[dim]%s is a leaf[-]\n", tview.Escape(node.Name)))
		return
	}

	content.WriteString(fmt.Sprintf("\n[white::b]Inside %s[white::-]\n", tview.Escape(node.Name)))
	shown := 0
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if shown == previewLimit {
			content.WriteString(fmt.Sprintf("  [dim]… %d more[-]\n", countNonNil(node.Children)-shown))
			break
		}
		content.WriteString(fmt.Sprintf("  %s %s\n",
			padName(child.Name, nameWidth), output.FormatValue(tree.Aggregate(child))))
		shown++
	}
}

// bar renders share (0..1) of width cells using eighth blocks for the remainder
func bar(share float64, width int) string {
	if share <= 0 {
		return strings.Repeat(" ", width)
	}
	if share > 1 {
		share = 1
	}

	cells := share * float64(width)
	full := int(cells)
	eighths := int((cells - float64(full)) * 8)

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	used := full
	if eighths > 0 && full < width {
		b.WriteRune([]rune(partialBlocks)[eighths-1])
		used++
	}
	b.WriteString(strings.Repeat(" ", width-used))
	return b.String()
}

// padName truncates or pads name to width runes and escapes color tags
func padName(name string, width int) string {
	runes := []rune(name)
	if len(runes) > width {
		runes = append(runes[:width-1], '…')
	}
	return tview.Escape(string(runes)) + strings.Repeat(" ", width-len(runes))
}

func countNonNil(nodes []*tree.Node) int {
	n := 0
	for _, node := range nodes {
		if node != nil {
			n++
		}
	}
	return n
}
