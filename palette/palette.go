// Package palette assigns deterministic, depth-aware colors to the segments
// of a level. Colors are lowercase "#rrggbb" strings.
package palette

import (
	"errors"
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	DefaultDepthStep     = 24
	DefaultMaxDepthShift = 72
	DefaultHoverStep     = 20
)

// DefaultColors are the base hues shared by every depth.
var DefaultColors = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#06B6D4"}

var ErrEmptyPalette = errors.New("palette needs at least one color")

// Palette is a fixed ordered list of base colors plus the brightness shifts
// applied per depth and on hover.
type Palette struct {
	colors        []colorful.Color
	depthStep     int
	maxDepthShift int
	hoverStep     int
}

// New parses the given hex colors. maxDepthShift bounds the total shift
// applied for deep levels.
func New(colors []string, depthStep, maxDepthShift, hoverStep int) (*Palette, error) {
	if len(colors) == 0 {
		return nil, ErrEmptyPalette
	}
	parsed := make([]colorful.Color, len(colors))
	for i, c := range colors {
		col, err := colorful.Hex(c)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color %q: %w", c, err)
		}
		parsed[i] = col
	}
	if maxDepthShift < 0 {
		maxDepthShift = -maxDepthShift
	}
	return &Palette{
		colors:        parsed,
		depthStep:     depthStep,
		maxDepthShift: maxDepthShift,
		hoverStep:     hoverStep,
	}, nil
}

// Default returns the built-in palette.
func Default() *Palette {
	p, err := New(DefaultColors, DefaultDepthStep, DefaultMaxDepthShift, DefaultHoverStep)
	if err != nil {
		panic(err)
	}
	return p
}

// Size returns the number of base colors.
func (p *Palette) Size() int {
	return len(p.colors)
}

// DepthShift returns the per-channel brightness shift used at depth.
func (p *Palette) DepthShift(depth int) int {
	if depth < 0 {
		depth = 0
	}
	shift := depth * p.depthStep
	if shift > p.maxDepthShift {
		shift = p.maxDepthShift
	}
	if shift < -p.maxDepthShift {
		shift = -p.maxDepthShift
	}
	return shift
}

// AssignColors returns count colors for a level at depth. The result only
// depends on (count, depth).
func (p *Palette) AssignColors(count, depth int) []string {
	if count <= 0 {
		return []string{}
	}
	shift := p.DepthShift(depth)
	out := make([]string, count)
	for i := range out {
		out[i] = shift255(p.colors[i%len(p.colors)], shift)
	}
	return out
}

// Hover returns the hover variant of a color produced by AssignColors.
// Unparseable input is returned unchanged.
func (p *Palette) Hover(color string) string {
	adjusted, err := AdjustBrightness(color, p.hoverStep)
	if err != nil {
		return color
	}
	return adjusted
}

// HoverColors maps Hover over colors.
func (p *Palette) HoverColors(colors []string) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = p.Hover(c)
	}
	return out
}

// AdjustBrightness adds amount to each RGB channel, clamped to [0, 255].
func AdjustBrightness(color string, amount int) (string, error) {
	col, err := colorful.Hex(color)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", color, err)
	}
	return shift255(col, amount), nil
}

func shift255(c colorful.Color, amount int) string {
	r, g, b := c.RGB255()
	out := colorful.Color{
		R: float64(clamp(int(r)+amount)) / 255,
		G: float64(clamp(int(g)+amount)) / 255,
		B: float64(clamp(int(b)+amount)) / 255,
	}
	return out.Hex()
}

func clamp(v int) int {
	return min(255, max(0, v))
}

var defaultPalette = Default()

// AssignColors uses the default palette.
func AssignColors(count, depth int) []string {
	return defaultPalette.AssignColors(count, depth)
}
