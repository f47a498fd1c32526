package analysis

import (
	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/tree"
)

// Frame is the renderable projection of one level. All slices are
// index-aligned: Labels[i] names Nodes[i], whose effective value is Values[i]
// and which is drawn with Colors[i] (HoverColors[i] while hovered).
type Frame struct {
	Labels      []string
	Values      []float64
	Colors      []string
	HoverColors []string
	Nodes       []*tree.Node
}

// Summary holds the derived statistics shown next to a chart.
type Summary struct {
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// ExportRow is one line of the tabular export.
type ExportRow struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Percent     float64 `json:"percent"`
	HasChildren bool    `json:"has_children"`
}

// Builder builds frames with a fixed palette.
type Builder struct {
	Palette *palette.Palette
}

// NewBuilder returns a Builder using p, or the default palette when p is nil.
func NewBuilder(p *palette.Palette) Builder {
	if p == nil {
		p = palette.Default()
	}
	return Builder{Palette: p}
}

// Build filters level by keyword and projects the visible nodes.
func (b Builder) Build(level []*tree.Node, keyword string, depth int) Frame {
	visible := FilterByKeyword(level, keyword)
	colors := b.Palette.AssignColors(len(visible), depth)

	f := Frame{
		Labels:      make([]string, len(visible)),
		Values:      make([]float64, len(visible)),
		Colors:      colors,
		HoverColors: b.Palette.HoverColors(colors),
		Nodes:       visible,
	}
	for i, node := range visible {
		f.Labels[i] = node.Name
		f.Values[i] = tree.Aggregate(node)
	}
	return f
}

// BuildFrame builds a frame with the default palette.
func BuildFrame(level []*tree.Node, keyword string, depth int) Frame {
	return NewBuilder(nil).Build(level, keyword, depth)
}

// Len returns the number of segments.
func (f Frame) Len() int {
	return len(f.Labels)
}

// Total returns the sum of all segment values.
func (f Frame) Total() float64 {
	var total float64
	for _, v := range f.Values {
		total += v
	}
	return total
}

// Percent returns segment i's share of the total in percent. It is 0 when
// the total is 0 or i is out of range.
func (f Frame) Percent(i int) float64 {
	if i < 0 || i >= len(f.Values) {
		return 0
	}
	total := f.Total()
	if total == 0 {
		return 0
	}
	return f.Values[i] / total * 100
}

// Summary computes total, count, max and average. Max and average of an
// empty frame are 0.
func (f Frame) Summary() Summary {
	s := Summary{Total: f.Total(), Count: f.Len()}
	if s.Count == 0 {
		return s
	}
	s.Max = f.Values[0]
	for _, v := range f.Values[1:] {
		if v > s.Max {
			s.Max = v
		}
	}
	s.Average = s.Total / float64(s.Count)
	return s
}

// ExportRows derives one row per segment.
func (f Frame) ExportRows() []ExportRow {
	rows := make([]ExportRow, f.Len())
	for i := range rows {
		rows[i] = ExportRow{
			Name:        f.Labels[i],
			Value:       f.Values[i],
			Percent:     f.Percent(i),
			HasChildren: tree.HasChildren(f.Nodes[i]),
		}
	}
	return rows
}
