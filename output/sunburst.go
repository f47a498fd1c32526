package output

import (
	"fmt"
	"io"
	"os"

	"github.com/ChristianF88/burstx/palette"
	"github.com/ChristianF88/burstx/tree"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ChartOptions controls how a level is drawn as a sunburst.
type ChartOptions struct {
	Title    string
	Subtitle string
	Palette  *palette.Palette
	// Depth is the navigation depth of the innermost ring; it selects the
	// brightness shift so the chart matches the frame colors.
	Depth int
}

// SunburstData converts nodes into nested chart data. Ring r is colored with
// the palette at depth Depth+r, siblings by position, the same rule frames use.
func SunburstData(nodes []*tree.Node, p *palette.Palette, depth int) []opts.SunBurstData {
	if p == nil {
		p = palette.Default()
	}
	data := make([]opts.SunBurstData, len(nodes))
	colors := p.AssignColors(len(nodes), depth)
	for i, node := range nodes {
		data[i] = sunburstNode(node, colors[i], p, depth)
	}
	return data
}

func sunburstNode(node *tree.Node, color string, p *palette.Palette, depth int) opts.SunBurstData {
	d := opts.SunBurstData{
		Name:      node.Name,
		Value:     tree.Aggregate(node),
		ItemStyle: &opts.ItemStyle{Color: color},
		Emphasis: &opts.Emphasis{
			ItemStyle: &opts.ItemStyle{Color: p.Hover(color)},
		},
	}
	if len(node.Children) == 0 {
		return d
	}

	colors := p.AssignColors(len(node.Children), depth+1)
	d.Children = make([]*opts.SunBurstData, 0, len(node.Children))
	for i, child := range node.Children {
		if child == nil {
			continue
		}
		c := sunburstNode(child, colors[i], p, depth+1)
		d.Children = append(d.Children, &c)
	}
	return d
}

// NewSunburstChart builds the chart for nodes.
func NewSunburstChart(nodes []*tree.Node, o ChartOptions) *charts.Sunburst {
	title := o.Title
	if title == "" {
		title = "Sunburst"
	}

	sunburst := charts.NewSunburst()
	sunburst.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       title,
			Width:           "100vw",
			Height:          "90vh",
			Theme:           types.ThemeVintage,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: o.Subtitle,
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "item",
			Formatter: opts.FuncOpts(`function (params) {
		return params.name + '<br />Value: ' + params.value;
	}`),
		}),
	)

	sunburst.AddSeries(title, SunburstData(nodes, o.Palette, o.Depth),
		charts.WithSunburstOpts(opts.SunburstChart{
			NodeClick: "rootToNode",
			Sort:      "null",
			Animation: opts.Bool(true),
		}),
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(true),
		}),
	)
	return sunburst
}

// RenderSunburst writes the chart page for nodes as HTML to w.
func RenderSunburst(w io.Writer, nodes []*tree.Node, o ChartOptions) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(NewSunburstChart(nodes, o))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering sunburst: %w", err)
	}
	return nil
}

// PlotSunburst writes the chart page for nodes to filename.
func PlotSunburst(nodes []*tree.Node, o ChartOptions, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create sunburst file %s: %w", filename, err)
	}
	defer f.Close()

	return RenderSunburst(f, nodes, o)
}
